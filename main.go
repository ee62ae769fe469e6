package main

import (
	"form-builder/config"
	"form-builder/controllers/idgen"
	"form-builder/database"
	"form-builder/logger"
	"form-builder/notifier"
	"form-builder/routes"
	"form-builder/services"
	stdlog "log"
)

func main() {
	config.LoadConfig()

	log, err := logger.New(config.APP_ENV)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	idgen.Init(1)

	if err := database.EnsureDatabaseExists(config.DBName); err != nil {
		log.Fatal("failed to ensure database", "db", config.DBName, "error", err)
	}

	mainDB, err := database.OpenDatabaseConnection(config.DBName)
	if err != nil {
		log.Fatal("failed to connect to database", "db", config.DBName, "error", err)
	}

	if err := database.Migrate(mainDB); err != nil {
		log.Fatal("failed to auto migrate", "error", err)
	}

	if config.SeedMenus {
		if err := database.SeedMenus(mainDB); err != nil {
			log.Fatal("failed to seed menus", "error", err)
		}
	}

	pool := database.NewPool(nil)
	pool.Put(config.DBName, mainDB)
	defer pool.Close()

	var respNotifier services.ResponseNotifier
	if mailer := notifier.FromConfig(); mailer != nil {
		respNotifier = mailer
	} else {
		log.Info("smtp not configured, response notifications disabled")
	}

	app := routes.NewApp(log)
	routes.SetupRoutes(app, pool, log, respNotifier)

	log.Info("server starting", "port", config.APP_PORT, "env", config.APP_ENV)
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
