package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"qualiobra/internal/app"
	"qualiobra/internal/cache"
	"qualiobra/internal/config"
	"qualiobra/internal/model"
	"qualiobra/internal/service"
)

// itemFile is the layout of a questionnaire seed file
type itemFile struct {
	Items []seedItem `yaml:"items"`
}

// seedItem defaults Active to true when the file omits it
type seedItem model.QuestionnaireItem

func (s *seedItem) UnmarshalYAML(node *yaml.Node) error {
	type plain model.QuestionnaireItem
	p := plain{Active: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = seedItem(p)
	return nil
}

// parseItems reads and validates a seed file. Items without a display order
// keep file order.
func parseItems(r io.Reader) ([]model.QuestionnaireItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var f itemFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]model.QuestionnaireItem, len(f.Items))
	for i, it := range f.Items {
		items[i] = model.QuestionnaireItem(it)
		if items[i].DisplayOrder == 0 {
			items[i].DisplayOrder = i + 1
		}
	}
	return items, nil
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import questionnaire items from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		items, err := parseItems(f)
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Printf("%d items parsed from %s\n", len(items), path)
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stores, err := app.OpenStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer stores.Close()

		var itemCache cache.ItemCache
		if err := stores.OpenRedis(ctx, cfg.RedisAddr); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v; cached questionnaire expires after %s\n", err, cfg.ItemCacheTTL)
		} else {
			itemCache = cache.NewItemCache(stores.Redis, cfg.ItemCacheTTL)
		}

		svc := service.NewQuestionnaireService(stores.ItemRepo, itemCache, "")
		if err := svc.ImportItems(ctx, items); err != nil {
			return err
		}

		fmt.Printf("Imported %d items into %s\n", len(items), cfg.StoreBackend)
		return nil
	},
}

func init() {
	importCmd.Flags().StringP("file", "f", "items.yaml", "Questionnaire YAML file")
	importCmd.Flags().Bool("dry-run", false, "Parse and validate the file without writing")
}
