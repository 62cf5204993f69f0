package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/patdaburu/mothergeo/internal/api"
	"github.com/patdaburu/mothergeo/internal/config"
	"github.com/patdaburu/mothergeo/internal/entity"
	"github.com/patdaburu/mothergeo/internal/gen"
	"github.com/patdaburu/mothergeo/internal/parser"
	"github.com/patdaburu/mothergeo/internal/schema"
	"github.com/patdaburu/mothergeo/internal/store/memstore"
	"github.com/patdaburu/mothergeo/internal/store/pgstore"
)

const configFile = "mothergeo.yaml"

const (
	CommandProvision = "provision"
	CommandDDL       = "ddl"
	CommandServe     = "serve"
)

type Settings struct {
	WorkingDir string
	// Args holds the command and its arguments. An empty Args runs provision.
	Args []string
	// Out receives the output of the ddl command. Defaults to stdout.
	Out io.Writer
}

func Run(s Settings) error {
	return RunContext(context.Background(), s)
}

func RunContext(ctx context.Context, s Settings) error {
	command := CommandProvision
	if len(s.Args) > 0 {
		command = s.Args[0]
	}

	cfg, err := config.Read(filepath.Join(s.WorkingDir, configFile))
	if err != nil {
		return err
	}

	models, err := readModels(s, *cfg)
	if err != nil {
		return err
	}

	if err := checkRelationNames(models); err != nil {
		return err
	}

	switch command {
	case CommandDDL:
		return ddl(ctx, s, *cfg, models)
	case CommandProvision:
		return withStore(ctx, *cfg, func(store entity.DataStore) error {
			f, err := entity.NewFactory(store, factoryOptions(*cfg)...)
			if err != nil {
				return err
			}

			return provision(ctx, s, *cfg, f, models)
		})
	case CommandServe:
		return withStore(ctx, *cfg, func(store entity.DataStore) error {
			server, err := api.NewServer(models, store, factoryOptions(*cfg)...)
			if err != nil {
				return err
			}

			return api.RunServer(cfg.Server.Addr, server)
		})
	}

	return fmt.Errorf(`unknown command "%s"`, command)
}

// readModels parses the model documents matched by the globs of `cfg.Models`.
// Files of a glob are read in lexical order.
func readModels(s Settings, cfg config.Config) ([]*schema.ModelInfo, error) {
	var models []*schema.ModelInfo
	seen := make(map[string]bool)

	for _, m := range cfg.Models {
		path := filepath.Join(s.WorkingDir, m.Path)

		files, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf(`failed to resolve model files using glob "%s": %w`, m.Path, err)
		}

		if len(files) == 0 {
			return nil, fmt.Errorf(`no model files match "%s"`, m.Path)
		}

		sort.Strings(files)

		for _, f := range files {
			if seen[f] {
				continue
			}
			seen[f] = true

			model, err := parser.ParseFile(f)
			if err != nil {
				return nil, fmt.Errorf(`failed to parse model file "%s": %w`, f, err)
			}

			models = append(models, model)
		}
	}

	return models, nil
}

func factoryOptions(cfg config.Config) []entity.Option {
	if cfg.Database.Schema == "" {
		return nil
	}

	return []entity.Option{entity.WithSchema(cfg.Database.Schema)}
}

// withStore opens the configured store and closes it once fn returns.
func withStore(ctx context.Context, cfg config.Config, fn func(store entity.DataStore) error) error {
	if cfg.Database.URL == "" {
		log.Printf("no database configured, using an in-memory store")
		return fn(memstore.New())
	}

	store, err := pgstore.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	return fn(store)
}

// checkRelationNames fails when two models declare relations with the same
// name. Their tables would be the same.
func checkRelationNames(models []*schema.ModelInfo) error {
	owners := make(map[string]string)

	for _, m := range models {
		if m.Spatial == nil || m.Spatial.FeatureTables == nil {
			continue
		}

		for _, rel := range m.Spatial.FeatureTables.Relations() {
			key := strings.ToLower(rel.Name())

			if owner, ok := owners[key]; ok {
				return fmt.Errorf(`failed to read model "%s": %w (declared by model "%s" first)`,
					m.Name, &schema.DuplicateNameError{Kind: "relation", Name: rel.Name()}, owner)
			}

			owners[key] = m.Name
		}
	}

	return nil
}

func provision(ctx context.Context, s Settings, cfg config.Config, f *entity.Factory, models []*schema.ModelInfo) error {
	for _, m := range models {
		classes, err := f.MakeModel(ctx, m)
		if err != nil {
			return fmt.Errorf(`failed to provision model "%s": %w`, m.Name, err)
		}

		log.Printf(`provisioned %d tables for model "%s"`, len(classes), m.Name)
	}

	if err := f.Store().Commit(ctx); err != nil {
		return err
	}

	if cfg.Package.Path == "" {
		return nil
	}

	return gen.GenerateCode(cfg, s.WorkingDir, f.Classes())
}

func ddl(ctx context.Context, s Settings, cfg config.Config, models []*schema.ModelInfo) error {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	for _, m := range models {
		script, err := entity.TranslateModel(ctx, m, factoryOptions(cfg)...)
		if err != nil {
			return fmt.Errorf(`failed to translate model "%s": %w`, m.Name, err)
		}

		if _, err := io.WriteString(out, script); err != nil {
			return err
		}
	}

	return nil
}
