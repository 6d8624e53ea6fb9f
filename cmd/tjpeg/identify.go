package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/turbojpeg"
	"github.com/davesmith10/turbojpeg/internal/cms"
	"github.com/davesmith10/turbojpeg/internal/jpegmeta"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect image dimensions, metadata and ICC profile info",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]

	dec := turbojpeg.NewDecoder(turbojpeg.DecoderOptions{})
	defer dec.Close()
	dec.SetSourceFile(path)

	format, err := dec.DetectFormat()
	if err != nil {
		return fmt.Errorf("sniffing %s: %w", path, err)
	}
	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Format:     %s\n", format)
	if format != turbojpeg.FormatJPEG {
		return nil
	}

	width, height, err := dec.Dimensions(0)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	fmt.Printf("Dimensions: %d x %d\n", width, height)

	thumbs, err := dec.ThumbnailCount(0)
	if err != nil {
		return err
	}
	fmt.Printf("Thumbnails: %d\n", thumbs)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	fmt.Printf("File size:  %d bytes (%.1f MB)\n", len(data), float64(len(data))/(1024*1024))

	icc, err := jpegmeta.NewReader(data).ICCProfile()
	if err != nil {
		return err
	}
	if icc == nil {
		fmt.Println("ICC profile: none")
		return nil
	}
	pi, err := cms.ParseProfileInfo(icc)
	if err != nil {
		fmt.Printf("ICC profile: present (%d bytes) but invalid: %v\n", len(icc), err)
		return nil
	}
	fmt.Printf("ICC profile: %d bytes\n", len(icc))
	fmt.Printf("  Version:     %s\n", pi.Version)
	fmt.Printf("  Color space: %s\n", cms.ColorSpaceName(pi.ColorSpace))
	fmt.Printf("  PCS:         %s\n", cms.ColorSpaceName(pi.PCS))
	fmt.Printf("  Class:       %s\n", cms.ProfileClassName(pi.Class))

	return nil
}
