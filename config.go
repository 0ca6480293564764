/*
Copyright © 2026 Fishbowlhq <dev@fishbowlhq.dev>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	afkTimeout  time.Duration
	bind        string
	bonusRound  bool
	kafkaBroker string
	minPhrases  int
	minPlayers  int
	minTeamSize int
	port        int
	prefix      string
	profile     bool
	tick        time.Duration
	tlsCert     string
	tlsKey      string
	turnSeconds int
	verbose     bool
	version     bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.turnSeconds < 1 {
		return fmt.Errorf("invalid turn length (must be at least 1 second): %d", c.turnSeconds)
	}
	if c.tick <= 0 {
		return fmt.Errorf("invalid tick interval: %s", c.tick)
	}
	if c.minPlayers < 2*c.minTeamSize {
		return fmt.Errorf("--min-players (%d) cannot be lower than twice --min-team-size (%d)", c.minPlayers, c.minTeamSize)
	}
	if c.minPhrases < 1 {
		return fmt.Errorf("invalid phrase minimum: %d", c.minPhrases)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// gameOptions translates the start thresholds and timing knobs into the
// engine's options. Round names are fixed; only the bonus round toggles.
func (c *Config) gameOptions() GameOptions {
	return GameOptions{
		RoundNames:  defaultRoundNames(),
		TimerAmount: c.turnSeconds,
		BonusRound:  c.bonusRound,
	}
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FISHBOWL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "fishbowl",
		Short:         "A live multi-team party word-guessing server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.DurationVar(&cfg.afkTimeout, "afk-timeout", 35*time.Minute, "time before idle players are kicked, 0 disables (env: FISHBOWL_AFK_TIMEOUT)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FISHBOWL_BIND)")
	fs.BoolVar(&cfg.bonusRound, "bonus-round", false, "append a bonus round after the nominal last round (env: FISHBOWL_BONUS_ROUND)")
	fs.StringVar(&cfg.kafkaBroker, "kafka-broker", "", "optional kafka broker for per-room event streams (env: FISHBOWL_KAFKA_BROKER)")
	fs.IntVar(&cfg.minPhrases, "min-phrases", 10, "phrases required in the bowl before a game can start (env: FISHBOWL_MIN_PHRASES)")
	fs.IntVar(&cfg.minPlayers, "min-players", 4, "players required in a room before a game can start (env: FISHBOWL_MIN_PLAYERS)")
	fs.IntVar(&cfg.minTeamSize, "min-team-size", 2, "players required on each team before a game can start (env: FISHBOWL_MIN_TEAM_SIZE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FISHBOWL_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FISHBOWL_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FISHBOWL_PROFILE)")
	fs.DurationVar(&cfg.tick, "tick", time.Second, "turn clock resolution (env: FISHBOWL_TICK)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FISHBOWL_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FISHBOWL_TLS_KEY)")
	fs.IntVar(&cfg.turnSeconds, "turn-seconds", 60, "countdown length for each clue-giving turn (env: FISHBOWL_TURN_SECONDS)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FISHBOWL_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FISHBOWL_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("fishbowl v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
