package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-nexrad/nexrad"
)

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <FILE>",
		Short: "Show the message header and product description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			printInfo(cmd.OutOrStdout(), m)
			return nil
		},
	}
}

func printInfo(w io.Writer, m *nexrad.Message) {
	h := m.Header()
	d := m.Description()
	f := m.Framing()
	lat, lon := m.Station()

	if f.WMO != "" {
		fmt.Fprintf(w, "WMO heading:   %s\n", f.WMO)
		fmt.Fprintf(w, "AWIPS id:      %s\n", f.AWIPS)
	}
	fmt.Fprintf(w, "Product code:  %d\n", d.ProductCode)
	fmt.Fprintf(w, "Station:       %.3f, %.3f (%d ft)\n", lat, lon, d.Height)
	fmt.Fprintf(w, "Mode / VCP:    %d / %d\n", d.Mode, d.VCP)
	fmt.Fprintf(w, "Message size:  %s\n", humanize.Bytes(uint64(h.Length)))
	fmt.Fprintf(w, "Body size:     %s (compressed: %v)\n", humanize.Bytes(uint64(m.BodySize())), m.Compressed())
	fmt.Fprintf(w, "Blocks:        symbology=%v graphic=%v tabular=%v\n", m.HasSymbology(), m.HasGraphic(), m.HasTabular())
}

func (a *app) packetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packets <FILE>",
		Short: "List the packets of the symbology and graphic blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			w := cmd.OutOrStdout()
			count := 0
			err = nexrad.WalkPackets(m, func(parent nexrad.Kind, index int, p *nexrad.Packet) error {
				count++
				fmt.Fprintf(w, "%s %d: %s at %d (%s)\n", parent, index, p.Code, p.Offset, humanize.Bytes(uint64(p.Size)))
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s packets\n", humanize.Comma(int64(count)))
			return nil
		},
	}
}

func (a *app) tabularCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabular <FILE>",
		Short: "Print the tabular block's text pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.open(args[0])
			if err != nil {
				return err
			}
			defer m.Close()

			pages, err := m.TabularPages()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, lines := range pages {
				fmt.Fprintf(w, "--- page %d ---\n", i+1)
				for _, line := range lines {
					fmt.Fprintln(w, line)
				}
			}
			return nil
		},
	}
}
