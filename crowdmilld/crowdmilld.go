// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/crowdmill/crowdmill/crowdfund"
	"github.com/crowdmill/crowdmill/events"
	"github.com/crowdmill/crowdmill/pool"
	"github.com/crowdmill/crowdmill/registry"
	"github.com/crowdmill/crowdmill/store/localdb"
)

func _main() error {
	// Load configuration and parse command line.
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("could not load configuration file: %v", err)
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	log.Infof("Version : %v", version())
	log.Infof("Home dir: %v", cfg.HomeDir)
	log.Infof("Data dir: %v", cfg.DataDir)

	// Create the data directory in case it does not exist.
	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return err
	}

	// Setup the key-value store. Project state is encrypted at rest.
	kv, err := localdb.New(cfg.HomeDir, cfg.DataDir)
	if err != nil {
		return err
	}
	defer kv.Close()

	// Setup the engine collaborators. The treasury custodies account
	// balances and funding pools and the registry tracks identity
	// profiles and roles.
	treasury := pool.New()
	reg := registry.New()
	em := events.NewManager()

	engine, err := crowdfund.New(treasury, treasury, reg, reg,
		crowdfund.WithStore(kv),
		crowdfund.WithEvents(em),
		crowdfund.WithThreshold(cfg.Threshold))
	if err != nil {
		return err
	}

	c := crowdmilld{
		cfg:      cfg,
		engine:   engine,
		treasury: treasury,
		registry: reg,
	}
	c.setupRoutes()

	// Bind to a port and pass our router in.
	listenC := make(chan error)
	for _, listener := range cfg.Listeners {
		listen := listener
		go func() {
			srv := &http.Server{
				Addr:         listen,
				Handler:      c.router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}
			log.Infof("Listen: %v", listen)
			listenC <- srv.ListenAndServe()
		}()
	}

	// Tell user we are ready to go.
	log.Infof("Start of day")

	// Setup OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	for {
		select {
		case sig := <-sigs:
			log.Infof("Terminating with %v", sig)
			goto done
		case err := <-listenC:
			log.Errorf("%v", err)
			goto done
		}
	}
done:

	log.Infof("Exiting")

	return nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	err := _main()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
