package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/turbojpeg"
)

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail",
	Short: "Extract the embedded EXIF thumbnail as PNG",
	RunE:  runThumbnail,
}

func init() {
	thumbnailCmd.Flags().StringP("input", "i", "", "Input JPEG file")
	thumbnailCmd.Flags().StringP("output", "o", "", "Output PNG file")
	thumbnailCmd.MarkFlagRequired("input")
	thumbnailCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(thumbnailCmd)
}

func runThumbnail(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	dec := turbojpeg.NewDecoder(turbojpeg.DecoderOptions{})
	defer dec.Close()
	dec.SetSourceFile(inputPath)

	thumb, err := dec.ReadThumbnail(0, 0)
	if err != nil {
		return fmt.Errorf("reading thumbnail from %s: %w", inputPath, err)
	}
	if thumb == nil {
		return fmt.Errorf("%s has no usable embedded thumbnail", inputPath)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, thumb); err != nil {
		return fmt.Errorf("writing PNG: %w", err)
	}

	b := thumb.Bounds()
	fmt.Printf("Extracted %dx%d thumbnail\n", b.Dx(), b.Dy())
	fmt.Printf("Output: %s\n", outputPath)

	return nil
}
