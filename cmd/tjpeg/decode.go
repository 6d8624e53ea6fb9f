package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/turbojpeg"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a JPEG to PNG",
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringP("input", "i", "", "Input JPEG file")
	decodeCmd.Flags().StringP("output", "o", "", "Output PNG file")
	decodeCmd.Flags().Bool("fast-dct", false, "Use the fast inexact DCT")
	decodeCmd.Flags().Bool("fast-upsampling", false, "Use fast chroma upsampling")
	decodeCmd.MarkFlagRequired("input")
	decodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	fastDCT, _ := cmd.Flags().GetBool("fast-dct")
	fastUpsampling, _ := cmd.Flags().GetBool("fast-upsampling")

	dec := turbojpeg.NewDecoder(turbojpeg.DecoderOptions{
		FastDCT:        fastDCT,
		FastUpsampling: fastUpsampling,
	})
	defer dec.Close()
	dec.SetSourceFile(inputPath)

	raster, err := dec.Decode(0)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if err := png.Encode(out, raster); err != nil {
		return fmt.Errorf("writing PNG: %w", err)
	}

	fmt.Printf("Decoded %dx%d (%d channels, %s)\n",
		raster.Width, raster.Height, raster.Channels, raster.ColorSpace)
	fmt.Printf("Output: %s\n", outputPath)

	return nil
}
