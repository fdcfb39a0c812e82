package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/restcontract/users-contract-tests/apiclient"
	"github.com/restcontract/users-contract-tests/framework"
	"github.com/restcontract/users-contract-tests/report"
	"github.com/restcontract/users-contract-tests/schema"
	"github.com/restcontract/users-contract-tests/servicedef"
	"github.com/restcontract/users-contract-tests/userstests"
)

var errTestsFailed = errors.New("one or more tests failed")

func main() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:           "users-contract-tests",
		Short:         "End-to-end contract tests for a users REST API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), params)
		},
	}
	params.register(cmd)
	return cmd
}

func newLogger(level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)
	return log, nil
}

func run(ctx context.Context, params commandParams) error {
	if err := params.validate(); err != nil {
		return err
	}
	log, err := newLogger(params.logLevel)
	if err != nil {
		return err
	}
	testData, err := servicedef.LoadTestData(params.testDataPath)
	if err != nil {
		return err
	}
	log.WithField("path", params.testDataPath).Debug("Loaded test data")

	schemas, err := schema.LoadRegistry(params.schemasPath)
	if err != nil {
		return err
	}
	if err := schemas.RequireAll(servicedef.AllScenarioNames...); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": params.schemasPath, "schemas": schemas.Names()}).Debug("Loaded response schemas")

	headers, err := params.requestHeaders()
	if err != nil {
		return err
	}
	client, err := apiclient.NewClient(apiclient.Config{
		BaseURL: params.baseURL,
		Headers: headers,
		Timeout: params.requestTimeout,
	})
	if err != nil {
		return err
	}

	if params.awaitService > 0 {
		if err := client.AwaitService(ctx, params.awaitService, os.Stdout); err != nil {
			return fmt.Errorf("API at %s is not available: %w", client.BaseURL(), err)
		}
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	log.WithFields(logrus.Fields{
		"baseURL":  client.BaseURL(),
		"parallel": params.parallel,
	}).Info("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	config := &userstests.SuiteConfig{
		Client:      client,
		TestData:    testData,
		Schemas:     schemas,
		Parallelism: params.parallel,
	}

	startTime := time.Now()
	results := userstests.RunTestSuite(config, params.filters.AsFilter, testLogger)
	elapsed := time.Since(startTime)

	fmt.Println()
	framework.PrintResults(results)

	if params.reportPath != "" {
		if err := report.WriteExcel(params.reportPath, results, elapsed); err != nil {
			log.WithError(err).Error("Could not write report")
		} else {
			log.WithField("path", params.reportPath).Info("Wrote report")
		}
	}

	if !results.OK() {
		return errTestsFailed
	}
	return nil
}
