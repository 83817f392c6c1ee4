// Command hpackcat is a development aid for exercising the hpack codec
// from the command line: it decodes a hex-encoded HPACK header block
// into a header list, or encodes a list of "name: value" lines into a
// hex-encoded header block.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsto/hpack"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var maxTableSize int
	var maxHeaderSize int
	var huffman string
	var verbose bool

	root := &cobra.Command{
		Use:   "hpackcat",
		Short: "Decode and encode HPACK header blocks from the command line",
	}
	root.PersistentFlags().IntVar(&maxTableSize, "max-table-size", 4096,
		"dynamic table capacity in bytes")
	root.PersistentFlags().IntVar(&maxHeaderSize, "max-header-size", 1<<20,
		"aggregate decoded header size cap, in bytes")
	root.PersistentFlags().StringVar(&huffman, "huffman", "auto",
		"huffman policy for encode: auto, on, or off")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log dynamic table and truncation events to stderr")

	root.AddCommand(newDecodeCmd(&maxTableSize, &maxHeaderSize, &verbose))
	root.AddCommand(newEncodeCmd(&maxTableSize, &huffman))
	return root
}

func newDecodeCmd(maxTableSize, maxHeaderSize *int, verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "decode [hex-block]",
		Short: "Decode a hex-encoded HPACK header block and print its headers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHexInput(cmd, args)
			if err != nil {
				return err
			}

			dec := hpack.NewDecoder(*maxHeaderSize, *maxTableSize)
			if *verbose {
				log, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				dec.WithLogger(log)
			}

			var sink hpack.HeaderListSink
			if _, err := dec.Decode(raw, &sink); err != nil {
				return err
			}
			truncated := dec.EndHeaderBlock()

			for _, h := range sink.Headers {
				sensitive := ""
				if h.Sensitive {
					sensitive = " (sensitive)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s%s\n", h.Name, h.Value, sensitive)
			}
			if truncated {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: header block was truncated")
			}
			return nil
		},
	}
}

func newEncodeCmd(maxTableSize *int, huffman *string) *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "Encode \"name: value\" lines read from stdin into a hex HPACK header block",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := hpack.NewEncoder(*maxTableSize)
			switch *huffman {
			case "on":
				enc.ForceHuffman = true
			case "off":
				enc.ForceNoHuffman = true
			case "auto":
			default:
				return fmt.Errorf("unknown --huffman value %q", *huffman)
			}

			var out strings.Builder
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				name, value, ok := strings.Cut(line, ":")
				if !ok {
					return fmt.Errorf("malformed header line %q, want \"name: value\"", line)
				}
				hdr := hpack.HeaderField{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}
				if err := enc.EncodeHeader(&hexSink{&out}, hdr.Name, hdr.Value, hdr.Sensitive); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.String())
			return nil
		},
	}
}

// hexSink adapts io.Writer to emit each write as hex, so the encode
// command can stream the wire bytes straight to a hex string builder.
type hexSink struct {
	out *strings.Builder
}

func (s *hexSink) Write(p []byte) (int, error) {
	s.out.WriteString(hex.EncodeToString(p))
	return len(p), nil
}

func readHexInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var text string
	if len(args) == 1 && args[0] != "-" {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	return hex.DecodeString(text)
}
