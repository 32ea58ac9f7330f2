package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"checkparser/pkg/imgproc"

	"github.com/rs/zerolog/log"
)

// Writes every intermediate image of the pipeline for one check so the
// preprocessing and region layout can be inspected by eye.
func main() {
	in := flag.String("file", "", "check image (jpeg, png or pdf)")
	out := flag.String("out", os.TempDir(), "output directory")
	flag.Parse()
	if *in == "" {
		log.Fatal().Msg("-file required")
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal().Err(err).Msg("read")
	}
	img, err := imgproc.Decode(data)
	if err != nil {
		log.Fatal().Err(err).Msg("decode")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal().Err(err).Msg("mkdir")
	}
	base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	save := func(suffix string, g *imgproc.Grid) {
		p := filepath.Join(*out, base+"."+suffix+".png")
		if err := imgproc.Save(g, p); err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("save")
		}
		fmt.Printf("%-16s %4dx%-4d %s\n", suffix, g.Width, g.Height, p)
	}

	save("decoded", img)
	if bin, err := imgproc.AdaptiveThreshold(img, 11, 2); err == nil {
		save("threshold", bin)
		if angle, err := imgproc.SkewAngle(bin); err == nil {
			fmt.Printf("skew angle %.3f deg\n", angle)
		}
	}
	clean := imgproc.Preprocess(img)
	save("preprocessed", clean)

	regions, err := imgproc.ExtractRegions(clean)
	if err != nil {
		log.Fatal().Err(err).Msg("regions")
	}
	for _, r := range imgproc.Regions {
		save("region-"+string(r), regions[r])
	}
	save("amount-clean", imgproc.CleanForText(regions[imgproc.RegionAmount]))
	save("date-clean", imgproc.CleanForText(regions[imgproc.RegionDate]))
	save("micr-enhanced", imgproc.EnhanceMICR(regions[imgproc.RegionMICR]))
}
