// semweb-answers - question answering over three web representations
// Copyright (C) 2026  semweb contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jredh-dev/semweb/internal/logger"
	"github.com/jredh-dev/semweb/services/answers/config"
	"github.com/jredh-dev/semweb/services/answers/internal/app"
	gohttp "github.com/jredh-dev/semweb/services/go-http"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("semweb-answers %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.LogJSON); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Named("main")

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalw("failed to start", "error", err)
	}

	s := gohttp.New()
	a.Handler.Routes(s.Router)
	s.OnStop(func() {
		if err := a.Close(); err != nil {
			log.Errorw("close knowledge graph", "error", err)
		}
	})

	addr := ":" + cfg.Port
	log.Infow("semweb-answers", "addr", addr, "api", "http://localhost"+addr+"/api/")
	for _, m := range a.Methods {
		log.Infow("method", "name", m.Name, "path", "/api/"+m.Slug+"/{question}", "mounted", m.Table != nil)
	}

	if err := s.ListenAndServe(addr); err != nil {
		log.Fatalw("server error", "error", err)
	}
}
