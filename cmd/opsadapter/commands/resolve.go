package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/opsadapter/internal/adapter"
	"git.home.luguber.info/inful/opsadapter/internal/config"
	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/gitinfo"
	"git.home.luguber.info/inful/opsadapter/internal/logfields"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	Name       string `short:"n" help:"Docset name to resolve."`
	Repository string `short:"r" help:"Repository URL. Detected from --repo-path when omitted."`
	Branch     string `short:"b" help:"Branch name. Detected from --repo-path when omitted."`
	RepoPath   string `name:"repo-path" default:"." help:"Local checkout used to detect repository and branch."`
	Out        string `short:"o" help:"Write the build configuration to a file instead of stdout."`
}

func (r *ResolveCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	env := config.LoadEnvironment()

	repository, branch := resolveRepositoryInputs(r.Repository, r.Branch, r.RepoPath)

	a, err := adapter.New(env, adapter.Options{
		DataDir:     cfg.DataDir,
		StorePath:   cfg.EventStore.Path,
		NATSURL:     cfg.NATS.URL,
		NATSSubject: cfg.NATS.Subject,
		NATSStream:  cfg.NATS.Stream,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	buildConfig, err := a.Resolver().GetBuildConfig(context.Background(), r.Name, repository, branch)
	if err != nil {
		return err
	}
	if buildConfig == nil {
		return errors.ConfigError("nothing to resolve").
			WithContext("hint", "provide --name together with --repository and --branch, or run inside a git checkout").
			Build()
	}

	data, err := json.MarshalIndent(buildConfig, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode build configuration").Build()
	}

	if r.Out != "" {
		if err := os.WriteFile(r.Out, append(data, '\n'), 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "write build configuration").
				WithContext("path", r.Out).
				Build()
		}
		return nil
	}
	fmt.Println(string(data))
	return nil
}

// resolveRepositoryInputs fills missing repository and branch from the local
// checkout. Explicit flags always win; detection failures leave the inputs
// empty and let the resolver decide whether that is fatal.
func resolveRepositoryInputs(repository, branch, repoPath string) (string, string) {
	if repository != "" && branch != "" {
		return repository, branch
	}

	info, err := gitinfo.Detect(repoPath)
	if err != nil {
		slog.Debug("git detection failed", logfields.Path(repoPath), logfields.Error(err))
		return repository, branch
	}

	if repository == "" {
		repository = info.RepositoryURL
	}
	if branch == "" {
		branch = info.Branch
	}
	return repository, branch
}
