// ashareai — A-share market data tools for agent frameworks
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ashareai/ashareai/api"
	"github.com/ashareai/ashareai/internal/config"
	"github.com/ashareai/ashareai/internal/infra"
	"github.com/ashareai/ashareai/internal/provider"
	"github.com/ashareai/ashareai/internal/providers/eastmoney"
	"github.com/ashareai/ashareai/internal/providers/sina"
	"github.com/ashareai/ashareai/internal/tools"
	"github.com/ashareai/ashareai/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ashareai",
	Short: "ashareai — A股行情数据工具集",
	Long: `ashareai exposes Chinese A-share market data (index levels, rankings,
market statistics, sector performance, stock quotes, news) as callable
tools for agent frameworks, over a CLI and an HTTP API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Provider.TimeoutSec > 0 {
			infra.SetTimeout(time.Duration(cfg.Provider.TimeoutSec) * time.Second)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(indicesCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sectorsCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// buildRegistry creates a provider registry from the loaded config.
func buildRegistry() (*provider.Registry, error) {
	reg := provider.NewRegistry()

	em := eastmoney.NewWithBaseURL(cfg.Provider.EastmoneyBaseURL)
	if err := reg.Register(em); err != nil {
		return nil, err
	}
	sn := sina.NewWithBaseURL(cfg.Provider.SinaBaseURL)
	if err := reg.Register(sn); err != nil {
		return nil, err
	}

	// Honor the configured default for every model it can serve.
	if name := cfg.Provider.Default; name != "" {
		if p, err := reg.Get(name); err == nil {
			for _, model := range p.SupportedModels() {
				if err := reg.SetDefault(model, name); err != nil {
					return nil, err
				}
			}
		}
	}
	return reg, nil
}

// buildToolRegistry wires the toolset and news service into a tool registry.
func buildToolRegistry() (*tools.Registry, error) {
	preg, err := buildRegistry()
	if err != nil {
		return nil, err
	}
	reg := tools.NewRegistry()
	tools.NewToolset(preg).RegisterTools(reg)
	newsSources := tools.DefaultNewsSources
	for _, url := range cfg.News.Sources {
		newsSources = append(newsSources, tools.NewsSource{Name: url, RSSURL: url})
	}
	tools.NewNewsServiceWithSources(newsSources).RegisterTools(reg)
	return reg, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ashareai %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Tools Command ---

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildToolRegistry()
		if err != nil {
			return err
		}
		for _, t := range reg.List() {
			fmt.Printf("%-24s %s\n", t.Name, t.Description)
		}
		return nil
	},
}

// --- Call Command ---

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call a tool by name with JSON arguments",
	Long: `Call a tool by name, passing its arguments as a JSON object.

Examples:
  ashareai call get_stock_index_data
  ashareai call get_stock_info '{"stock_code":"000001"}'
  ashareai call get_market_news '{"limit":5}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildToolRegistry()
		if err != nil {
			return err
		}
		rawArgs := json.RawMessage("{}")
		if len(args) == 2 {
			if !json.Valid([]byte(args[1])) {
				return fmt.Errorf("arguments must be a JSON object: %s", args[1])
			}
			rawArgs = json.RawMessage(args[1])
		}
		out, err := reg.Execute(cmd.Context(), args[0], rawArgs)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

// runTool executes one named tool with the given arguments and prints
// the result. Shared by the convenience commands below.
func runTool(ctx context.Context, name string, args json.RawMessage) error {
	reg, err := buildToolRegistry()
	if err != nil {
		return err
	}
	if args == nil {
		args = json.RawMessage("{}")
	}
	out, err := reg.Execute(ctx, name, args)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// --- Convenience Commands ---

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "Show the major index quotes (上证指数、深证成指、创业板指、科创50)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd.Context(), "get_stock_index_data", nil)
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show the gainer and loser rankings (涨幅榜、跌幅榜)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd.Context(), "get_stock_ranking", nil)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show market-wide statistics (涨跌停、涨跌家数、总成交额)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd.Context(), "get_market_statistics", nil)
	},
}

var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Show the best and worst performing industry sectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd.Context(), "get_sector_performance", nil)
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock [code]",
	Short: "Show a detailed quote for one stock code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := json.Marshal(map[string]string{"stock_code": args[0]})
		if err != nil {
			return err
		}
		return runTool(cmd.Context(), "get_stock_info", payload)
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show recent market news headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		payload, err := json.Marshal(map[string]int{"limit": limit})
		if err != nil {
			return err
		}
		return runTool(cmd.Context(), "get_market_news", payload)
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "number of headlines to show")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		preg, err := buildRegistry()
		if err != nil {
			return err
		}
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting ashareai API server on %s\n", addr)
		return api.NewServer(cfg, preg).ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and provider health",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  ashareai — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus(utils.NowCST()))
		fmt.Printf("  Time (CST):    %s\n", utils.NowCST().Format("2006-01-02 15:04:05"))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Default Provider: %s\n", cfg.Provider.Default)
		fmt.Printf("    API Server:       %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		preg, err := buildRegistry()
		if err != nil {
			return err
		}

		// Ping all providers concurrently.
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		infos := preg.List()
		results := make([]string, len(infos))
		g, gctx := errgroup.WithContext(ctx)
		for i, info := range infos {
			i, info := i, info
			g.Go(func() error {
				p, err := preg.Get(info.Name)
				if err != nil {
					results[i] = fmt.Sprintf("error: %v", err)
					return nil
				}
				if err := p.Ping(gctx); err != nil {
					results[i] = fmt.Sprintf("unreachable: %v", err)
					return nil
				}
				results[i] = "ok"
				return nil
			})
		}
		_ = g.Wait()

		fmt.Println("  Providers:")
		for i, info := range infos {
			fmt.Printf("    %-12s %s\n", info.Name+":", results[i])
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
