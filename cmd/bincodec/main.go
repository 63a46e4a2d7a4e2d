// Command bincodec is a small demo CLI around the codec package: encode
// a JSON document against a schema, decode bytes back into JSON, or run
// the length-prefixed framing demo server.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjamin-larsen/bincodec/codec"
)

var rootCmd = &cobra.Command{
	Use:   "bincodec",
	Short: "Schema-driven binary codec CLI",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.AddCommand(encodeCmd, decodeCmd, serveCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode <schema> <document.json>",
	Short: "Encode a JSON document against a schema into bytes on stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := codec.NewFromSource(args[0])
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("bincodec: invalid document JSON: %w", err)
		}

		out, err := c.Encode(doc)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode <schema> <bytes-file>",
	Short: "Decode a byte buffer against a schema into JSON on stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := codec.NewFromSource(args[0])
		if err != nil {
			return err
		}

		doc, err := c.DecodeFile(args[1])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

var (
	serveAddr       string
	serveMaxMsgSize uint32
)

var serveCmd = &cobra.Command{
	Use:   "serve <schema>",
	Short: "Run the length-prefixed framing demo server for a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := codec.NewFromSource(args[0])
		if err != nil {
			return err
		}

		srv := &Server{
			Codec:          c,
			MaxMessageSize: serveMaxMsgSize,
			OverflowPolicy: OverflowDiscard,
		}
		return srv.ListenAndServe("tcp", serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":6000", "address to listen on")
	serveCmd.Flags().Uint32Var(&serveMaxMsgSize, "max-message-size", 1<<20, "largest frame accepted before the overflow policy applies")
}
