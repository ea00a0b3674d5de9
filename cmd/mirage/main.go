/*
 * Mirage - A Redirecting OpenFlow Controller
 *
 * Copyright (C) 2026 The Mirage Authors. All rights reserved.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mirage-sdn/mirage/api"
	"github.com/mirage-sdn/mirage/api/core"
	"github.com/mirage-sdn/mirage/log"
	"github.com/mirage-sdn/mirage/network"
	"github.com/mirage-sdn/mirage/northbound/app/redirect"

	"github.com/fsnotify/fsnotify"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	programName     = "mirage"
	programVersion  = "0.1.0"
	defaultLogLevel = logging.INFO
)

var (
	logger        = logging.MustGetLogger("main")
	loggerLeveled logging.LeveledBackend
)

func main() {
	app := &cli.App{
		Name:    programName,
		Usage:   "OpenFlow 1.3 controller that redirects client traffic between two servers",
		Version: programVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "absolute path of the configuration file",
				Value:   fmt.Sprintf("/usr/local/etc/%v.yaml", programName),
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(c *cli.Context) error {
	conf, err := initConfig(c.String("config"))
	if err != nil {
		return err
	}
	if err := initLog(conf); err != nil {
		return errors.Wrap(err, "failed to init log")
	}

	policy, err := redirect.New(conf.redirect)
	if err != nil {
		return err
	}
	logger.Infof("%v policy: %v", policy.Name(), policy)
	controller := network.NewController(policy, conf.network)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	initAPIServer(conf.rest, controller, policy)
	initSignalHandler(controller, cancel)

	return listen(ctx, conf.port, controller)
}

func initConfig(path string) (*config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	// Read the config file.
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed to read the config file")
	}
	conf, err := loadConfig(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate the configuration")
	}

	// Watching and re-reading config file whenever it changes.
	v.OnConfigChange(func(e fsnotify.Event) {
		// Ignore the other operations to avoid reading empty config.
		if e.Op&fsnotify.Write == 0 {
			return
		}

		if loggerLeveled != nil {
			// Set log level for all modules
			loggerLeveled.SetLevel(getLogLevel(v.GetString("default.log_level")), "")
		}
	})
	v.WatchConfig()

	return conf, nil
}

func initLog(conf *config) error {
	backend, err := log.NewBackend(conf.logBackend, programName, getLogLevel(conf.logLevel))
	if err != nil {
		return err
	}
	loggerLeveled = backend
	logging.SetBackend(loggerLeveled)

	return nil
}

func getLogLevel(level string) logging.Level {
	ret, err := log.ParseLevel(level, defaultLogLevel)
	if err != nil {
		logger.Infof("invalid log level=%v, defaulting to %v..", level, defaultLogLevel)
	}

	return ret
}

func initAPIServer(conf restConfig, controller *network.Controller, policy *redirect.Policy) {
	if conf.port == 0 {
		logger.Info("REST API is disabled")
		return
	}

	go func() {
		srv := &core.API{
			Server: api.Server{
				Port:       conf.port,
				Controller: controller,
				Policy:     policy,
			},
		}
		srv.TLS.Cert = conf.cert
		srv.TLS.Key = conf.key
		if err := srv.Serve(); err != nil {
			logger.Fatalf("failed to run the API server: %v", err)
		}
	}()
}

func initSignalHandler(controller *network.Controller, cancel context.CancelFunc) {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		// Infinte loop.
		for {
			s := <-c
			if s == syscall.SIGTERM || s == syscall.SIGINT {
				// Graceful shutdown
				logger.Warning("Shutting down...")
				cancel()
				return
			} else if s == syscall.SIGHUP {
				fmt.Println("* Controller status:")
				fmt.Println(controller.String())
			}
		}
	}()
}

// accept passes the new connections into c until ctx is canceled.
func accept(ctx context.Context, listener net.Listener, c chan<- net.Conn) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			logger.Errorf("failed to accept a new connection: %v", err)
			continue
		}
		logger.Infof("new device is connected from %v", conn.RemoteAddr())

		select {
		case c <- conn:
		case <-ctx.Done():
			// Nobody is going to fetch the connection from the backlog.
			conn.Close()
			return
		}
	}
}

func listen(ctx context.Context, port uint16, controller *network.Controller) error {
	type KeepAliver interface {
		SetKeepAlive(keepalive bool) error
		SetKeepAlivePeriod(d time.Duration) error
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %v port", port)
	}
	defer listener.Close()
	logger.Infof("listening on %v for OpenFlow switches", listener.Addr())

	backlog := make(chan net.Conn, 32)
	go accept(ctx, listener, backlog)

	// Infinite loop
	for {
		select {
		case <-ctx.Done():
			logger.Debug("terminating the main listener loop...")
			// Give the sessions a moment to close their connections.
			time.Sleep(500 * time.Millisecond)
			return nil
		case conn := <-backlog:
			logger.Debug("fetching a new connection from the backlog..")
			if v, ok := conn.(KeepAliver); ok {
				logger.Debug("trying to enable socket keepalive..")
				if err := v.SetKeepAlive(true); err == nil {
					logger.Debug("setting socket keepalive period...")
					v.SetKeepAlivePeriod(time.Duration(5) * time.Second)
				} else {
					logger.Errorf("failed to enable socket keepalive: %v", err)
				}
			}
			controller.AddConnection(ctx, conn)
		}
	}
}
