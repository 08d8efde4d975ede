package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/7vars/rxrecipes"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/urfave/cli"
)

// BuildVersion: Binary compiled GIT version
var BuildVersion string

func main() {
	app := cli.NewApp()
	app.Name = "rxrecipes"
	app.Usage = "run reactive stream recipes"
	app.Version = BuildVersion
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config,c",
			Usage: "config file (yaml, toml or json)",
		},
		cli.DurationFlag{
			Name:  "timeout",
			Usage: "timeout of a single recipe",
		},
	}
	app.Before = initConfig
	app.Commands = []cli.Command{
		{
			Name:   "list",
			Usage:  "print the registered recipes",
			Action: list,
		},
		{
			Name:      "run",
			Usage:     "run recipes, all of them when no name is given",
			ArgsUsage: "[names...]",
			Action:    run,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.Errorf("failed to run application: %v", err)
		os.Exit(1)
	}
}

func initConfig(c *cli.Context) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return err
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path := c.String("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	if c.IsSet("timeout") {
		viper.Set(rxrecipes.KeyRecipeTimeout, c.Duration("timeout"))
	}

	rxrecipes.ConfigureLogging(rxrecipes.NewConfig(viper.GetViper()))
	return nil
}

func list(*cli.Context) error {
	for _, name := range rxrecipes.Recipes() {
		fmt.Println(name)
	}
	return nil
}

func run(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	k := rxrecipes.New()
	defer k.Close()

	return k.Run(ctx, c.Args()...)
}
