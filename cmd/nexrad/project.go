package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-nexrad/projection"
)

type buildFlags struct {
	site   projection.Site
	scale  float64
	zoom   int
	output string
}

func (a *app) projectCmd() *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Build and query pixel-to-radar projection tables",
	}
	projectCmd.AddCommand(a.projectBuildCmd(), a.projectLookupCmd())
	return projectCmd
}

func (a *app) projectBuildCmd() *cobra.Command {
	var f buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a projection table for a radar site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasScale := cmd.Flags().Changed("scale")
			hasZoom := cmd.Flags().Changed("zoom")
			if hasScale == hasZoom {
				return errors.New("exactly one of --scale or --zoom is required")
			}

			opts := []projection.Option{projection.WithLogger(a.logger)}
			var bar *progressbar.ProgressBar
			if !a.noProgress {
				opts = append(opts, projection.WithProgress(func(done, total int) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetWriter(cmd.ErrOrStderr()),
							progressbar.OptionSetDescription("Building projection"),
							progressbar.OptionShowCount(),
						)
					}
					bar.Set(done)
				}))
			}

			path, h, err := a.buildProjection(f, hasScale, opts)
			if bar != nil {
				bar.Finish()
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %s %dx%d (%s pixels, %s)\n",
				path, h.Kind, h.Width, h.Height,
				humanize.Comma(int64(h.Width*h.Height)), humanize.Bytes(uint64(h.FileSize())))
			return nil
		},
	}

	cmd.Flags().Float64Var(&f.site.Lat, "lat", 0, "Radar latitude in degrees")
	cmd.Flags().Float64Var(&f.site.Lon, "lon", 0, "Radar longitude in degrees")
	cmd.Flags().IntVar(&f.site.Rangebins, "rangebins", 230, "Number of rangebins")
	cmd.Flags().IntVar(&f.site.RangebinMeters, "meters", 1000, "Rangebin length in meters")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "Equirectangular pixel size in degrees")
	cmd.Flags().IntVar(&f.zoom, "zoom", 0, "Web Mercator zoom level")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: the projection store directory)")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")

	return cmd
}

// buildProjection writes the table to the requested file, or into the
// configured store directory when no output is given.
func (a *app) buildProjection(f buildFlags, equirect bool, opts []projection.Option) (string, projection.Header, error) {
	if f.output == "" {
		store, err := projection.NewStore(a.cfg.ProjectionDir, a.cfg.ProjectionCacheTTL, opts...)
		if err != nil {
			return "", projection.Header{}, err
		}
		defer store.Close()

		var r *projection.Reader
		if equirect {
			r, err = store.Equirect(f.site, projection.EquirectParams{Scale: f.scale})
		} else {
			r, err = store.Mercator(f.site, projection.MercatorParams{Zoom: f.zoom})
		}
		if err != nil {
			return "", projection.Header{}, err
		}
		return r.Path(), r.Header(), nil
	}

	var p *projection.Projection
	var err error
	if equirect {
		p, err = projection.BuildEquirect(f.site, projection.EquirectParams{Scale: f.scale}, opts...)
	} else {
		p, err = projection.BuildMercator(f.site, projection.MercatorParams{Zoom: f.zoom}, opts...)
	}
	if err != nil {
		return "", projection.Header{}, err
	}
	if err := p.WriteFile(f.output); err != nil {
		return "", projection.Header{}, err
	}
	return f.output, p.Header(), nil
}

func (a *app) projectLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <FILE> <X> <Y>",
		Short: "Print the radar coordinate of a pixel",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid x %q", args[1])
			}
			y, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid y %q", args[2])
			}

			r, err := projection.Open(args[0], projection.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer r.Close()

			pt, err := r.FindPolarPoint(x, y)
			if err != nil {
				return err
			}

			h := r.Header()
			fmt.Fprintf(cmd.OutOrStdout(), "azimuth %.1f deg, rangebin %d (%.1f km)\n",
				pt.Degrees(), pt.Range, float64(pt.Range)*float64(h.RangebinMeters)/1000)
			return nil
		},
	}
}
