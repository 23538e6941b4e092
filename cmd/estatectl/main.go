package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/dmitrijs2005/cryptoestate/internal/cli"
	"github.com/dmitrijs2005/cryptoestate/internal/server/config"
	"github.com/dmitrijs2005/cryptoestate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cryptoestate/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	app := cli.NewApp(db, rm,
		services.NewUserService(db, rm, cfg, nil),
		services.NewTransactionService(db, rm),
		os.Stdin, os.Stdout,
	)

	code := app.Run(ctx, cli.CommandArgs(os.Args[1:]))
	db.Close()
	os.Exit(code)

}
