// Package cli implements the scriptsync CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcliao/scriptsync/internal/config"
	"github.com/rcliao/scriptsync/internal/engine"
	"github.com/rcliao/scriptsync/internal/logging"
	"github.com/rcliao/scriptsync/internal/markdown"
	"github.com/rcliao/scriptsync/internal/store"
	"github.com/rcliao/scriptsync/internal/timeline"
)

var (
	cfgFile      string
	docFlag      string
	timelineFlag string

	cfg config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "scriptsync",
	Short: "Keep a markdown script in sync with a timeline",
	Long: "scriptsync links headings and table rows of a markdown script to timeline media, " +
		"works out which lines are live under the playhead and projects them as a teleprompter.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		c, err := config.Load()
		if err != nil {
			exitErr("load config", err)
		}
		cfg = c
		level := cfg.LogLevel
		if cfg.Verbose {
			level = "debug"
		}
		logging.Setup(level, true)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := RootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default .scriptsync.yaml)")
	pf.StringP("db", "d", "", "Session database path (default: $SCRIPTSYNC_DB_PATH or ~/.scriptsync/sessions.db)")
	pf.BoolP("verbose", "v", false, "Debug logging")
	pf.StringVar(&docFlag, "doc", "", "Markdown script")
	pf.StringVarP(&timelineFlag, "timeline", "t", "", "Timeline project file (TOML)")

	_ = viper.BindPFlag("db_path", pf.Lookup("db"))
	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".scriptsync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}
	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

func exitErr(msg string, err error) {
	log.Debug().Err(err).Msg(msg)
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// workspace is a document bound to a timeline and its loaded mapping.
type workspace struct {
	DocPath string
	Text    string
	Doc     *markdown.Document
	Host    *timeline.Static
	Eng     *engine.Engine
}

// docArg lets read-only commands take the document as their only argument.
func docArg(args []string) string {
	if docFlag == "" && len(args) > 0 {
		return args[0]
	}
	return docFlag
}

func readDoc(path string) (string, string, error) {
	if path == "" {
		return "", "", errors.New("no document: pass --doc")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", err
	}
	return abs, string(data), nil
}

func engineOptions(l zerolog.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(l),
		engine.WithThrottle(cfg.ThrottleInterval),
		engine.WithAutoScroll(cfg.AutoScroll),
		engine.WithMinMatchLength(cfg.AutoLinkMinLength),
	}
}

// openWorkspace reads the document and timeline and loads the stored
// mapping. A document without a usable mapping yields an empty one; only
// I/O failures are errors.
func openWorkspace(path string, opts ...engine.Option) (*workspace, error) {
	abs, text, err := readDoc(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	host := &timeline.Static{}
	if timelineFlag != "" {
		if host, err = timeline.LoadStatic(timelineFlag); err != nil {
			return nil, err
		}
	}
	snap, err := timeline.NewSnapshot(host, cfg.SnapshotCacheSize)
	if err != nil {
		return nil, fmt.Errorf("timeline cache: %w", err)
	}

	l := logging.Component("engine")
	eng := engine.New(snap, append(engineOptions(l), opts...)...)
	eng.SetDocument(abs, text)
	switch err := eng.Load(abs); {
	case err == nil, errors.Is(err, engine.ErrNoMapping):
	case errors.Is(err, engine.ErrCorrupt), errors.Is(err, engine.ErrPathMismatch):
		// Load left the mapping empty; carry on as if none was stored.
		l.Warn().Err(err).Str("sidecar", engine.SidecarPath(abs)).Msg("ignoring unusable mapping")
	default:
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	eng.SetDocument(abs, text)

	return &workspace{
		DocPath: abs,
		Text:    text,
		Doc:     markdown.Parse(text),
		Host:    host,
		Eng:     eng,
	}, nil
}

func mustWorkspace(path string, opts ...engine.Option) *workspace {
	ws, err := openWorkspace(path, opts...)
	if err != nil {
		exitErr("open workspace", err)
	}
	return ws
}

func (ws *workspace) save() {
	if err := ws.Eng.Save(""); err != nil {
		exitErr("save mapping", err)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
