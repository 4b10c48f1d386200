package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"myvis/internal/colordict"
	"myvis/internal/config"
	"myvis/internal/logging"
	"myvis/internal/render"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const Version = "0.3.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	// Try to load .env file from current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
	} else {
		// Try to load from the application directory
		if execPath, err := os.Executable(); err == nil {
			envFile = filepath.Join(filepath.Dir(execPath), ".env")
			if _, err := os.Stat(envFile); err == nil {
				if err := godotenv.Load(envFile); err != nil {
					logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
				} else {
					logger.WithField("file", envFile).Debug("Loaded environment variables")
				}
			}
		}
	}
}

// defaultScheme returns the scheme named by MYVIS_COLORSCHEME, or RAINBOW.
func defaultScheme() string {
	if name := os.Getenv(config.SchemeEnv); name != "" {
		return name
	}
	return colordict.DefaultScheme
}

func main() {
	logger := logging.GetLogger()

	loadEnvironment()

	var configFile, outputFile string
	var scheme string
	var logLevel, argsLogLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:     "myvis",
		Short:   "Scientific figures from YAML descriptions",
		Long:    "Draws line, error bar, heat map, scatter, arrow and 3D figures with a fixed set of colour schemes",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			if argsLogLevel != "" {
				if err := logging.SetArgsLogLevel(argsLogLevel); err != nil {
					return fmt.Errorf("invalid args log level: %w", err)
				}
			}
			switch logFormat {
			case "", "text":
			case "json":
				logging.SetFormatter(&logrus.JSONFormatter{})
			default:
				return fmt.Errorf("unknown log format %q", logFormat)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&argsLogLevel, "args-log-level", "", "Set the level of the plotting argument log")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a figure",
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderFigure(configFile, outputFile, logLevel == "")
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a figure description",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(configFile)
		},
	}

	schemesCmd := &cobra.Command{
		Use:   "schemes [name]",
		Short: "List the colour schemes or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range colordict.Names() {
					fmt.Println(name)
				}
				return nil
			}
			return printScheme(args[0])
		},
	}

	colormapCmd := &cobra.Command{
		Use:   "colormap",
		Short: "Render the colour bar of a scheme",
		RunE: func(cmd *cobra.Command, args []string) error {
			return render.Colormap(scheme, outputFile)
		},
	}

	renderCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to figure description")
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (overrides output.file)")
	renderCmd.MarkFlagRequired("config")

	validateCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to figure description")
	validateCmd.MarkFlagRequired("config")

	colormapCmd.Flags().StringVar(&scheme, "scheme", defaultScheme(), "Colour scheme")
	colormapCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file")
	colormapCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemesCmd)
	rootCmd.AddCommand(colormapCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Fatal("Command execution failed")
	}
}

func validateConfig(configFile string) error {
	logger := logging.GetLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	checksum, err := config.FigureChecksum(cfg)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"config_file": configFile,
		"series":      len(cfg.Series),
		"checksum":    checksum,
	}).Info("Configuration is valid")
	return nil
}

func renderFigure(configFile, outputFile string, useConfigLogLevel bool) error {
	logger := logging.GetLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Failed to load configuration")
		return fmt.Errorf("failed to load config: %w", err)
	}

	if useConfigLogLevel && cfg.Figure.LogLevel != "" {
		if err := logging.SetLogLevel(cfg.Figure.LogLevel); err != nil {
			logger.WithField("log_level", cfg.Figure.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
			logging.SetLogLevel("info")
		} else {
			logger.WithField("log_level", cfg.Figure.LogLevel).Debug("Log level set from configuration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := render.NewRenderer(filepath.Dir(configFile), cfg.Data.DB)
	defer r.Close()

	res, err := r.Render(ctx, cfg, outputFile)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", configFile, err)
	}

	fmt.Println(res.Output)
	if res.Wrapper != "" {
		fmt.Println(res.Wrapper)
	}
	return nil
}

func printScheme(name string) error {
	s, ok := colordict.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown color scheme %q (available: %s)", name, strings.Join(colordict.Names(), ", "))
	}
	fmt.Printf("%s\n", s.Name)
	fmt.Printf("  primary:    %s\n", strings.Join(s.PrimaryColors, " "))
	fmt.Printf("  shadows:    %s\n", strings.Join(s.PrimaryShadows, " "))
	fmt.Printf("  helpers:    %s\n", strings.Join(s.HelperColors, " "))
	fmt.Printf("  background: %s\n", s.Background)
	fmt.Printf("  grid:       %s\n", s.GridColor)
	fmt.Printf("  axis:       %s\n", s.AxisColor)
	return nil
}
