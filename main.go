// Command ryu submits a Jujutsu bookmark stack as a chain of pull
// requests against GitHub or GitLab.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"go.ryu.dev/ryu/internal/jj"
	"go.ryu.dev/ryu/internal/rconfig"
	"go.ryu.dev/ryu/internal/rerr"
	"go.ryu.dev/ryu/internal/sigstack"
	"go.ryu.dev/ryu/internal/silog"

	_ "go.ryu.dev/ryu/internal/forge/github"
	_ "go.ryu.dev/ryu/internal/forge/gitlab"
)

// _version is overridden at build time via -ldflags.
var _version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sigs sigstack.Stack
	sigc := make(chan os.Signal, 1)
	sigs.Notify(sigc, os.Interrupt)
	defer sigs.Stop(sigc)
	go func() {
		if _, ok := <-sigc; !ok {
			return
		}
		fmt.Fprintln(os.Stderr, "ryu: interrupted, cleaning up; press Ctrl-C again to exit immediately")
		cancel()
		if _, ok := <-sigc; ok {
			os.Exit(130)
		}
	}()

	log := silog.New(os.Stderr, nil)

	// Load configuration before parsing flags, against whatever
	// workspace the current directory happens to be in. A missing or
	// unparseable jj config must not block `ryu --help` or similar, so
	// a failure here degrades to an empty Config rather than aborting.
	cfg, err := rconfig.Load(ctx, jj.New(silog.Nop(), ""))
	if err != nil {
		log.Debug("could not load jj configuration", "error", err)
		cfg = &rconfig.Config{}
	}

	var cli rootCmd
	parser, err := kong.New(&cli,
		kong.Name("ryu"),
		kong.Description("ryu submits a jj bookmark stack as a chain of pull requests against GitHub or GitLab."),
		kong.UsageOnError(),
		kong.Resolvers(cfg),
		kong.Bind(log),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Vars{"version": _version},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ryu:", err)
		return rerr.ExitCode(rerr.Internal)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ryu:", err)
		return rerr.ExitCode(rerr.UserInput)
	}

	if err := kctx.Run(); err != nil {
		log.Error(err.Error())
		return rerr.ExitCode(rerr.CategoryOf(err))
	}
	return 0
}
