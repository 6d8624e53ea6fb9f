package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/davesmith10/turbojpeg"
)

var transcodeCmd = &cobra.Command{
	Use:   "transcode",
	Short: "Re-encode a JPEG with new quality, subsampling and XMP",
	RunE:  runTranscode,
}

func init() {
	transcodeCmd.Flags().StringP("input", "i", "", "Input JPEG file")
	transcodeCmd.Flags().StringP("output", "o", "", "Output JPEG file")
	transcodeCmd.Flags().Int("quality", turbojpeg.DefaultQuality, "JPEG quality (0-100)")
	transcodeCmd.Flags().String("subsampling", "444", "Chroma subsampling (444, 422, 420)")
	transcodeCmd.Flags().Bool("progressive", true, "Write a progressive scan script")
	transcodeCmd.Flags().Bool("optimize", false, "Optimize Huffman tables")
	transcodeCmd.Flags().String("xmp", "", "File with an XMP packet to embed")
	transcodeCmd.MarkFlagRequired("input")
	transcodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(transcodeCmd)
}

func runTranscode(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	quality, _ := cmd.Flags().GetInt("quality")
	subsampling, _ := cmd.Flags().GetString("subsampling")
	progressive, _ := cmd.Flags().GetBool("progressive")
	optimize, _ := cmd.Flags().GetBool("optimize")
	xmpPath, _ := cmd.Flags().GetString("xmp")

	opts := turbojpeg.EncoderOptions{
		Quality:        quality,
		Subsampling:    turbojpeg.Subsampling(subsampling),
		Progressive:    progressive,
		OptimizeCoding: optimize,
	}
	if xmpPath != "" {
		xmp, err := os.ReadFile(xmpPath)
		if err != nil {
			return fmt.Errorf("reading XMP: %w", err)
		}
		opts.XMP = string(xmp)
	}

	dec := turbojpeg.NewDecoder(turbojpeg.DecoderOptions{})
	defer dec.Close()
	dec.SetSourceFile(inputPath)

	raster, err := dec.Decode(0)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	enc, err := turbojpeg.NewEncoder(opts)
	if err != nil {
		return err
	}
	defer enc.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if err := enc.Encode(raster, out); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	fmt.Printf("Transcoded %dx%d at quality %d (%s)\n",
		raster.Width, raster.Height, quality, subsampling)
	fmt.Printf("Output: %s\n", outputPath)

	return nil
}
