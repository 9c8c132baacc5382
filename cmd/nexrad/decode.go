package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-nexrad/nexrad"
)

func (a *app) radialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "radial <FILE>",
		Short: "Decode radial packets and summarize their dense grids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			w := cmd.OutOrStdout()
			return nexrad.WalkPackets(m, func(_ nexrad.Kind, _ int, p *nexrad.Packet) error {
				if !p.IsRadial() {
					return nil
				}
				return summarizeRadial(w, p)
			})
		},
	}
}

func summarizeRadial(w io.Writer, p *nexrad.Packet) error {
	dec, err := nexrad.NewRadialDecoder(p)
	if err != nil {
		return err
	}
	h := dec.Header()
	rays := dec.RaysLeft()

	grid, err := dec.UnpackDense()
	if err != nil {
		return err
	}

	var covered, nonzero int
	var peak byte
	for az := 0; az < nexrad.Azimuths; az++ {
		row := grid.Row(az)
		hit := false
		for _, v := range row {
			if v != 0 {
				nonzero++
				hit = true
				peak = max(peak, v)
			}
		}
		if hit {
			covered++
		}
	}

	fmt.Fprintf(w, "%s: %d rays x %d bins from bin %d, scale %d\n", h.Code, rays, h.BinCount, h.FirstBin, h.Scale)
	fmt.Fprintf(w, "  azimuths with data: %d/%d\n", covered, nexrad.Azimuths)
	fmt.Fprintf(w, "  nonzero cells: %s, peak %d\n", humanize.Comma(int64(nonzero)), peak)
	return nil
}

func (a *app) rasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raster <FILE>",
		Short: "Decode raster packets and summarize their runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			w := cmd.OutOrStdout()
			return nexrad.WalkPackets(m, func(_ nexrad.Kind, _ int, p *nexrad.Packet) error {
				if !p.IsRaster() {
					return nil
				}
				return summarizeRaster(w, p)
			})
		},
	}
}

func summarizeRaster(w io.Writer, p *nexrad.Packet) error {
	dec, err := nexrad.NewRasterDecoder(p)
	if err != nil {
		return err
	}
	width, height := dec.Info()

	runs, lit := 0, 0
	for {
		line, err := dec.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		runs += len(line.Runs)
		for _, r := range line.Runs {
			if r.Level != 0 {
				lit += r.Width
			}
		}
	}

	fmt.Fprintf(w, "%s: %dx%d cells\n", p.Code, width, height)
	fmt.Fprintf(w, "  runs: %s, nonzero cells: %s, bytes: %s\n",
		humanize.Comma(int64(runs)), humanize.Comma(int64(lit)), humanize.Bytes(uint64(dec.BytesRead())))
	return nil
}
