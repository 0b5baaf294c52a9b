package cmds

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/spelunker/pkg/speech"
	"github.com/go-go-golems/spelunker/pkg/world"
	"github.com/spf13/cobra"
)

func newCodec(cmd *cobra.Command) *speech.Codec {
	seed, _ := cmd.Flags().GetInt64("seed")
	firstOnly, _ := cmd.Flags().GetBool("first-keyword-only")
	options := []speech.Option{speech.WithFirstKeywordOnly(firstOnly)}
	if seed != 0 {
		options = append(options, speech.WithSeed(seed))
	}
	return speech.NewCodec(options...)
}

// NewSpeechCommand groups helpers to try the utterance codec by hand.
func NewSpeechCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speech",
		Short: "Say and recognize percepts and actions",
	}
	cmd.PersistentFlags().Int64("seed", 0, "Seed for phrase choice (0: random)")
	cmd.PersistentFlags().Bool("first-keyword-only", false, "Only recognize the canonical keyword of each percept")

	cmd.AddCommand(&cobra.Command{
		Use:   "percept [flag...]",
		Short: "Say a percept, e.g. 'percept breeze glitter'",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p world.Percept
			for _, arg := range args {
				f, err := speech.ParseFlag(arg)
				if err != nil {
					return err
				}
				f.Set(&p)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), newCodec(cmd).EncodePercept(p))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "action <action>",
		Short: "Say an action, e.g. 'action turn-left'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := world.ParseActionName(args[0])
			if err != nil {
				return err
			}
			utterance, err := newCodec(cmd).EncodeAction(a)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), utterance)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode-percept <utterance...>",
		Short: "Recognize the percept in an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newCodec(cmd).DecodePercept(strings.Join(args, " "))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), p.String())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode-action <utterance...>",
		Short: "Recognize the action in an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCodec(cmd).DecodeAction(strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.Symbol())
			return err
		},
	})

	return cmd
}
