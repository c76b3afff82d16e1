package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/cli"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/transport"
	"trivia-quiz/internal/userclient"
)

const releaseVersion = "1.0.0"

type playFlags struct {
	name       string
	amount     int
	category   string
	difficulty string
	kind       string
	timeLimit  time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.Default()).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nQuiz interrupted.")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	play := &playFlags{}

	root := &cobra.Command{
		Use:           "quiz-cli",
		Short:         "Play Open Trivia Database quizzes in the terminal.",
		Args:          cobra.NoArgs,
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, cfg, play)
		},
	}
	cfg.RegisterFlags(root.PersistentFlags())
	registerPlayFlags(root.Flags(), play)

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Start a quiz (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, cfg, play)
		},
	}
	registerPlayFlags(playCmd.Flags(), play)

	var reset bool
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show local quiz statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *cli.App) error {
				return a.ShowStats(ctx, reset)
			})
		},
	}
	statsCmd.Flags().BoolVar(&reset, "reset", false, "clear statistics before showing them")

	prefsCmd := newPrefsCmd(cfg)

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List trivia categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *cli.App) error {
				return a.Categories(ctx)
			})
		},
	}

	remoteCmd := newRemoteCmd(cfg)

	root.AddCommand(playCmd, statsCmd, prefsCmd, categoriesCmd, remoteCmd)

	// Only the play flags read the environment; prefs changes are explicit.
	cobra.CheckErr(config.BindEnv(root.PersistentFlags()))
	cobra.CheckErr(config.BindEnv(root.Flags()))
	cobra.CheckErr(config.BindEnv(playCmd.Flags()))
	cobra.CheckErr(config.BindEnv(remoteCmd.Flags()))

	root.CompletionOptions.HiddenDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.SetVersionTemplate("quiz-cli v{{.Version}}\n")

	return root
}

func registerPlayFlags(fs *pflag.FlagSet, play *playFlags) {
	fs.StringVarP(&play.name, "name", "n", "", "player name, stored for next time (env: TRIVIA_NAME)")
	fs.IntVarP(&play.amount, "amount", "a", 10, "number of questions, 1-50 (env: TRIVIA_AMOUNT)")
	fs.StringVarP(&play.category, "category", "c", "", "category name or id (env: TRIVIA_CATEGORY)")
	fs.StringVarP(&play.difficulty, "difficulty", "d", "", "easy, medium, hard or any; defaults to the stored preference (env: TRIVIA_DIFFICULTY)")
	fs.StringVarP(&play.kind, "type", "t", "", "multiple, boolean or any (env: TRIVIA_TYPE)")
	fs.DurationVar(&play.timeLimit, "time-limit", 0, "time per question; 0 uses the stored preference, negative disables it (env: TRIVIA_TIME_LIMIT)")
}

func runPlay(cmd *cobra.Command, cfg *config.Config, play *playFlags) error {
	return withApp(cmd, cfg, func(ctx context.Context, a *cli.App) error {
		_, err := a.Play(ctx, cli.PlayOptions{
			Name:       play.name,
			Amount:     play.amount,
			Category:   play.category,
			Difficulty: play.difficulty,
			Type:       play.kind,
			TimeLimit:  play.timeLimit,
			Encoding:   cfg.EncodingValue(),
		})
		return err
	})
}

func newPrefsCmd(cfg *config.Config) *cobra.Command {
	var (
		theme, difficulty, language string
		sound, animations, autoNext bool
		hints, toggle, reset        bool
		timeLimit                   int
		categories                  []string
	)

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			changes := cli.PreferenceChanges{ToggleTheme: toggle, SystemDark: systemPrefersDark()}
			if fs.Changed("theme") {
				changes.Theme = &theme
			}
			if fs.Changed("sound") {
				changes.Sound = &sound
			}
			if fs.Changed("animations") {
				changes.Animations = &animations
			}
			if fs.Changed("auto-next") {
				changes.AutoNext = &autoNext
			}
			if fs.Changed("hints") {
				changes.Hints = &hints
			}
			if fs.Changed("time-limit") {
				changes.TimeLimit = &timeLimit
			}
			if fs.Changed("difficulty") {
				changes.Difficulty = &difficulty
			}
			if fs.Changed("language") {
				changes.Language = &language
			}
			if fs.Changed("categories") {
				changes.Categories = categories
			}

			return withApp(cmd, cfg, func(ctx context.Context, a *cli.App) error {
				return a.Preferences(ctx, changes, reset)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&theme, "theme", "", "light, dark or auto")
	fs.BoolVar(&toggle, "toggle-theme", false, "switch between light and dark")
	fs.BoolVar(&sound, "sound", true, "enable sound effects")
	fs.BoolVar(&animations, "animations", true, "enable animations")
	fs.BoolVar(&autoNext, "auto-next", false, "advance to the next question automatically")
	fs.BoolVar(&hints, "hints", true, "show hints")
	fs.IntVar(&timeLimit, "time-limit", 30, "seconds per question, 5-300")
	fs.StringVar(&difficulty, "difficulty", "", "easy, medium or hard")
	fs.StringVar(&language, "language", "", "fr or en")
	fs.StringSliceVar(&categories, "categories", nil, "preferred categories")
	fs.BoolVar(&reset, "reset", false, "restore default preferences")
	return cmd
}

func newRemoteCmd(cfg *config.Config) *cobra.Command {
	var (
		server, name, category, difficulty, kind string
		amount, timeLimit                        int
	)

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Play a quiz hosted by a quiz-service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			httpClient, err := transport.NewHTTPClient(cfg.HTTPTimeout, "quiz-cli/"+releaseVersion)
			if err != nil {
				return err
			}

			remote := userclient.Config{
				Player:     name,
				Amount:     amount,
				Category:   category,
				Difficulty: difficulty,
				Type:       kind,
			}
			if cmd.Flags().Changed("time-limit-seconds") {
				remote.TimeLimit = &timeLimit
			}
			client := userclient.NewHTTPClient(server, httpClient)
			return userclient.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), client, remote)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&server, "server", userclient.DefaultServer, "quiz-service base URL (env: TRIVIA_SERVER)")
	fs.StringVarP(&name, "name", "n", "", "player name (env: TRIVIA_NAME)")
	fs.IntVarP(&amount, "amount", "a", 10, "number of questions, 1-50 (env: TRIVIA_AMOUNT)")
	fs.StringVarP(&category, "category", "c", "", "category name or id (env: TRIVIA_CATEGORY)")
	fs.StringVarP(&difficulty, "difficulty", "d", "", "easy, medium or hard (env: TRIVIA_DIFFICULTY)")
	fs.StringVarP(&kind, "type", "t", "", "multiple or boolean (env: TRIVIA_TYPE)")
	fs.IntVar(&timeLimit, "time-limit-seconds", 0, "seconds per question; 0 disables it, unset uses the player's stored preference (env: TRIVIA_TIME_LIMIT_SECONDS)")
	return cmd
}

// withApp wires the dependencies for one command and closes them afterwards.
func withApp(cmd *cobra.Command, cfg *config.Config, fn func(context.Context, *cli.App) error) error {
	deps, err := app.New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer deps.Close()

	player := cli.New(cli.Config{
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Color:      isTerminal(os.Stdout),
		Source:     deps.Source,
		Categories: deps.Categories,
		Profiles:   deps.Profiles,
		Logger:     deps.Logger,
	})
	return fn(cmd.Context(), player)
}

func isTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// systemPrefersDark reads the terminal background hint some emulators export.
func systemPrefersDark() bool {
	fgbg := os.Getenv("COLORFGBG")
	if fgbg == "" {
		return false
	}
	parts := strings.Split(fgbg, ";")
	switch parts[len(parts)-1] {
	case "0", "1", "2", "3", "4", "5", "6", "8":
		return true
	default:
		return false
	}
}
