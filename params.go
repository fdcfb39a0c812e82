package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/restcontract/users-contract-tests/framework"
)

const (
	defaultBaseURL      = "https://reqres.in/api"
	defaultTestDataPath = "testData.json"
	defaultSchemasPath  = "responseSchemas.json"
	defaultLogLevel     = "info"
)

type commandParams struct {
	baseURL        string
	testDataPath   string
	schemasPath    string
	filters        framework.RegexFilters
	headers        []string
	parallel       int
	requestTimeout time.Duration
	awaitService   time.Duration
	reportPath     string
	logLevel       string
	debug          bool
	debugAll       bool
}

// register defines the command line flags. Defaults come from the environment where there is a
// matching variable, so call this after any .env file has been loaded.
func (c *commandParams) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&c.baseURL, "base-url", getEnv("USERS_API_BASE_URL", defaultBaseURL),
		"base URL that relative scenario endpoints are resolved against")
	fs.StringVar(&c.testDataPath, "test-data", getEnv("USERS_API_TEST_DATA", defaultTestDataPath),
		"test data document (JSON or YAML)")
	fs.StringVar(&c.schemasPath, "schemas", getEnv("USERS_API_SCHEMAS", defaultSchemasPath),
		"response schema document (JSON or YAML)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringArrayVar(&c.headers, "header", nil, `extra request header as "Name: value" (repeatable)`)
	fs.IntVar(&c.parallel, "parallel", getEnvInt("USERS_API_PARALLEL", 1), "number of scenarios to run at once")
	fs.DurationVar(&c.requestTimeout, "request-timeout", 0, "abort requests that take longer than this (0 means never)")
	fs.DurationVar(&c.awaitService, "await-service", 0, "wait up to this long for the API to respond before running tests")
	fs.StringVar(&c.reportPath, "report-xlsx", "", "also write results to this Excel file")
	fs.StringVar(&c.logLevel, "log-level", getEnv("LOG_LEVEL", defaultLogLevel), "harness log level")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
}

func (c *commandParams) validate() error {
	if c.baseURL == "" {
		return errors.New("--base-url must not be empty")
	}
	if c.parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1, got %d", c.parallel)
	}
	if c.requestTimeout < 0 || c.awaitService < 0 {
		return errors.New("durations must not be negative")
	}
	_, err := c.requestHeaders()
	return err
}

func (c *commandParams) requestHeaders() (http.Header, error) {
	h := make(http.Header)
	for _, raw := range c.headers {
		name, value, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --header %q, expected \"Name: value\"", raw)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}
