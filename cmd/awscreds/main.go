// Copyright Smoke AWS Credentials Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// awscreds resolves AWS credentials from the process environment, either
// printing them once or serving them as a rotating credentials file.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/amzn/smoke-aws-credentials/internal/version"
)

type (
	cmd struct {
		Version struct{} `cmd:"" help:"Show version."`
		Get     cmdGet   `cmd:"" help:"Resolve AWS credentials from the environment, print them as JSON, and exit."`
		Serve   cmdServe `cmd:"" help:"Run a rotating credentials provider until interrupted."`
	}
	cmdGet struct {
		LogLevel string `help:"Log level. One of 'debug', 'info', 'warn', or 'error'." default:"info"`
	}
	cmdServe struct {
		CredentialsFile string `help:"Path of an AWS shared credentials file to keep updated with each rotation." type:"path"`
		Profile         string `help:"Profile to update in the credentials file." default:"default"`
		Region          string `help:"Region recorded in the credentials file profile."`
		LogLevel        string `help:"Log level. One of 'debug', 'info', 'warn', or 'error'." default:"info"`
	}
)

func main() {
	doMain(os.Stdout, os.Stderr, os.Args[1:], runGet, runServe)
}

func doMain(stdout, stderr io.Writer, args []string, gf getFn, sf serveFn) {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("awscreds"),
		kong.Description("Rotating AWS credentials CLI"),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		log.Fatalf("Error creating parser: %v", err)
	}
	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	switch ctx.Command() {
	case "version":
		_, _ = stdout.Write([]byte(fmt.Sprintf("awscreds: %s\n", version.Version)))
	case "get":
		if err := gf(c.Get, stdout, stderr); err != nil {
			log.Fatalf("Error getting credentials: %v", err)
		}
	case "serve":
		if err := sf(c.Serve, stderr); err != nil {
			log.Fatalf("Error serving credentials: %v", err)
		}
	default:
		panic("unreachable")
	}
}
