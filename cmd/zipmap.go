package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/refstore"
	"github.com/sells-group/outreach-cli/internal/zipcounty"
)

var zipmapCmd = &cobra.Command{
	Use:   "zipmap",
	Short: "Build and inspect the ZIP-to-county map",
}

var zipmapBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the ZIP-to-county map from reference collections and persist the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver, err := buildZipMap(ctx, st)
		if err != nil {
			return err
		}

		zap.L().Info("zip map cache written",
			zap.String("path", cfg.ZipMap.CachePath),
			zap.Int("zips", resolver.Len()),
			zap.Int("conflicts", resolver.Conflicts()),
		)
		return nil
	},
}

var zipmapShowCmd = &cobra.Command{
	Use:   "show <zip>",
	Short: "Show the resolved county and claimant evidence for a ZIP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver, err := loadZipMap(ctx, st)
		if err != nil {
			return err
		}

		county, ok := resolver.Resolve(args[0])
		out := map[string]any{
			"zip":      args[0],
			"resolved": ok,
		}
		if ok {
			out["county"] = county
		}
		if claimants := resolver.Claimants(args[0]); len(claimants) > 0 {
			out["claimants"] = claimants
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	zipmapCmd.AddCommand(zipmapBuildCmd)
	zipmapCmd.AddCommand(zipmapShowCmd)
	rootCmd.AddCommand(zipmapCmd)
}

// buildZipMap rebuilds the resolver from source collections and persists
// the cache.
func buildZipMap(ctx context.Context, st refstore.Store) (*zipcounty.Resolver, error) {
	ranges, err := zipcounty.LoadRanges(cfg.ZipMap.RangesPath)
	if err != nil {
		return nil, err
	}

	resolver, err := zipcounty.Build(ctx, st, ranges, cfg.ZipMap.Build)
	if err != nil {
		return nil, err
	}

	if err := resolver.SaveCache(cfg.ZipMap.CachePath); err != nil {
		return nil, eris.Wrap(err, "zipmap: persist cache")
	}
	return resolver, nil
}

// loadZipMap prefers the persisted cache and falls back to a full rebuild
// when the cache is missing or malformed.
func loadZipMap(ctx context.Context, st refstore.Store) (*zipcounty.Resolver, error) {
	resolver, err := zipcounty.LoadCache(cfg.ZipMap.CachePath)
	if err == nil {
		zap.L().Debug("zip map cache loaded",
			zap.String("path", cfg.ZipMap.CachePath),
			zap.Int("zips", resolver.Len()),
		)
		return resolver, nil
	}

	zap.L().Warn("zip map cache unusable, rebuilding from source",
		zap.String("path", cfg.ZipMap.CachePath),
		zap.Error(err),
	)
	return buildZipMap(ctx, st)
}
