package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davesmith10/turbojpeg"
	"github.com/davesmith10/turbojpeg/internal/xmputil"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata [file]",
	Short: "Show which metadata blocks a JPEG carries",
	Args:  cobra.ExactArgs(1),
	RunE:  runMetadata,
}

func init() {
	metadataCmd.Flags().Bool("dump-xmp", false, "Print the XMP packet body")
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	path := args[0]
	dumpXMP, _ := cmd.Flags().GetBool("dump-xmp")

	dec := turbojpeg.NewDecoder(turbojpeg.DecoderOptions{})
	defer dec.Close()
	dec.SetSourceFile(path)

	meta, err := dec.ReadMetadata(0)
	if err != nil {
		return fmt.Errorf("reading metadata from %s: %w", path, err)
	}

	describe := func(name string, n int) {
		if n > 0 {
			fmt.Printf("%s: %d bytes\n", name, n)
		} else {
			fmt.Printf("%s: none\n", name)
		}
	}
	describe("EXIF", len(meta.EXIF))
	describe("IPTC", len(meta.IPTC))
	describe("XMP ", len(meta.XMP))

	if dumpXMP && meta.XMP != "" {
		fmt.Println(xmputil.TrimXPacket(meta.XMP))
	}

	return nil
}
