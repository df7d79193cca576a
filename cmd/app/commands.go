package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/quickseq/internal"
	"github.com/starford/quickseq/internal/bridge"
	"github.com/starford/quickseq/internal/mcpserver"
	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/settings"
)

var (
	colorPage  = color.New(color.FgCyan, color.Bold)
	colorBlock = color.New(color.FgYellow)
	colorTag   = color.New(color.FgMagenta)
	colorDim   = color.New(color.Faint)
	colorError = color.New(color.FgRed, color.Bold)
)

// withServices runs fn against services built for a one-shot command.
// Host notifications and logs go to stderr so stdout stays machine-readable.
func withServices(cmd *cli.Command, fn func(svc *internal.Services) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)

	svc, err := internal.NewServices(cfg, bridge.NewTerminal(os.Stderr), logger)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(svc)
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search page names and block contents",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "links", Usage: "Print a deep link under each result"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			term := strings.Join(cmd.Args().Slice(), " ")
			return withServices(cmd, func(svc *internal.Services) error {
				items := svc.Search.SearchPagesAndBlocks(ctx, term).List()
				graph := ""
				if cmd.Bool("links") && len(items) > 0 {
					if g, err := svc.Client.CurrentGraph(ctx); err == nil {
						graph = g.Name
					}
				}
				printResults(os.Stdout, items, func(item models.SearchResult) string {
					if graph == "" {
						return ""
					}
					link, _ := svc.Links.ForResult(graph, item)
					return link
				})
				return nil
			})
		},
	}
}

func printResults(w io.Writer, items []models.SearchResult, link func(models.SearchResult) string) {
	if len(items) == 0 {
		fmt.Fprintln(w, colorDim.Sprint("no results"))
		return
	}
	for _, item := range items {
		switch item.Kind {
		case models.KindPage:
			fmt.Fprint(w, colorPage.Sprint(item.Title))
			for _, tag := range item.Tags {
				fmt.Fprint(w, " ", colorTag.Sprint(tag))
			}
			fmt.Fprintln(w)
		default:
			fmt.Fprintln(w, colorBlock.Sprint(item.Content), colorDim.Sprintf("(%s)", item.Title))
		}
		if l := link(item); l != "" {
			fmt.Fprintln(w, "  "+colorDim.Sprint(l))
		}
	}
}

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:      "journal",
		Usage:     "Append text to today's journal page",
		ArgsUsage: "<text>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" {
				return errors.New("journal: text is required")
			}
			return withServices(cmd, func(svc *internal.Services) error {
				page, err := svc.Ingest.Text(ctx, text)
				if err != nil {
					return err
				}
				svc.Host.Notify("Saved to " + page)
				return nil
			})
		},
	}
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Copy files into the graph and link them from today's journal",
		ArgsUsage: "<path>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return errors.New("ingest: at least one path is required")
			}
			return withServices(cmd, func(svc *internal.Services) error {
				report := svc.Ingest.Files(ctx, paths)
				for _, item := range report.Items {
					if item.Err != nil {
						fmt.Fprintln(os.Stdout, colorError.Sprint("✗"), item.Source, colorDim.Sprint(item.Err.Error()))
						continue
					}
					fmt.Fprintln(os.Stdout, colorPage.Sprint("✓"), item.Source, colorDim.Sprint(item.Link))
				}
				svc.Host.Notify(report.Summary())
				if report.Succeeded() == 0 {
					return errors.New(report.Summary())
				}
				return nil
			})
		},
	}
}

func imageCommand() *cli.Command {
	return &cli.Command{
		Name:      "image",
		Usage:     "Store a data: URL image under assets/ and embed it in today's journal",
		ArgsUsage: "<data-url | ->",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			raw := cmd.Args().First()
			if raw == "-" {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("image: read stdin: %w", err)
				}
				raw = strings.TrimSpace(string(b))
			}
			if raw == "" {
				return errors.New("image: data URL is required")
			}
			return withServices(cmd, func(svc *internal.Services) error {
				item, err := svc.Ingest.DataURL(ctx, raw)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, item.Stored)
				svc.Host.Notify("Image saved to " + item.Page)
				return nil
			})
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Inspect or change the stored note-store connection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show stored and effective settings",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withServices(cmd, func(svc *internal.Services) error {
						stored, err := svc.Settings.All()
						if err != nil {
							return err
						}
						cfg, err := loadConfig(cmd)
						if err != nil {
							return err
						}
						eff, err := svc.Settings.Resolve(cfg.NoteStore.Connection())
						if err != nil {
							return err
						}
						effective := map[string]string{
							settings.KeyHost:  eff.Host,
							settings.KeyPort:  fmt.Sprint(eff.Port),
							settings.KeyToken: eff.Token,
						}
						for _, k := range settings.Keys {
							src := colorDim.Sprint("default")
							if _, ok := stored[k]; ok {
								src = colorTag.Sprint("stored")
							}
							fmt.Fprintf(os.Stdout, "%-6s %s %s\n", k, effective[k], src)
						}
						return nil
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Print one stored setting",
				ArgsUsage: "<key>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					key := cmd.Args().First()
					return withServices(cmd, func(svc *internal.Services) error {
						v, ok, err := svc.Settings.Get(key)
						if err != nil {
							return err
						}
						if !ok {
							fmt.Fprintln(os.Stdout, colorDim.Sprint("(not set)"))
							return nil
						}
						fmt.Fprintln(os.Stdout, v)
						return nil
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Store one setting",
				ArgsUsage: "<key> <value>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return errors.New("settings set: expected <key> <value>")
					}
					return withServices(cmd, func(svc *internal.Services) error {
						if err := svc.Settings.Set(cmd.Args().Get(0), cmd.Args().Get(1)); err != nil {
							return err
						}
						svc.Host.Notify("Saved " + cmd.Args().Get(0))
						return nil
					})
				},
			},
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the MCP tools over stdio",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return withServices(cmd, func(svc *internal.Services) error {
				srv := mcpserver.New(svc.Search, svc.Ingest, svc.Client, svc.Links, version)
				return srv.ServeStdio()
			})
		},
	}
}
