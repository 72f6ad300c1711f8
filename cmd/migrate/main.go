package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/taller-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/taller-inventario/pkg/config"
	"github.com/jhoicas/taller-inventario/pkg/logger"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Nivel de log (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: logLevel, App: "migrate"})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("crear migrador")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		version, dirty, verr := m.Version()
		if verr == nil {
			fmt.Printf("versión: %d (dirty=%t)\n", version, dirty)
		}
		err = verr
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("migración fallida")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Uso: migrate [flags] <comando>

Comandos:
  up        aplica las migraciones pendientes
  down      revierte todas las migraciones
  version   muestra la versión actual

Flags:
  -log-level  nivel de log (debug, info, warn, error)`)
}
