package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform"
)

func newBGPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bgp",
		Short: "Configure the default VRF BGP process",
		Long: `Configure BGP on platforms that support it (slxos).

Examples:
  switchkit -t 10.0.0.5 --write bgp local-as 65010
  switchkit -t 10.0.0.5 --write bgp neighbor 10.0.0.2 65020
  switchkit -t 10.0.0.5 --write bgp max-paths 16 --afi ipv6
  switchkit -t 10.0.0.5 bgp show`,
	}
	cmd.AddCommand(
		newBGPShowCmd(a),
		newBGPLocalASCmd(a),
		newBGPNeighborCmd(a),
		newBGPMaxPathsCmd(a),
		newBGPRemoveCmd(a),
	)
	return cmd
}

func (a *app) applyBGP(ctx context.Context, op func(context.Context, platform.BGPDriver, ports.Callback) error) error {
	return a.apply(ctx, func(ctx context.Context, d platform.SwitchDriver, cb ports.Callback) error {
		b, err := platform.AsBGP(d)
		if err != nil {
			return err
		}
		return op(ctx, b, cb)
	})
}

func newBGPShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print local AS, neighbors and maximum-paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.applyBGP(cmd.Context(), func(ctx context.Context, b platform.BGPDriver, cb ports.Callback) error {
				return printBGP(ctx, cmd.OutOrStdout(), b, cb)
			})
		},
	}
}

func printBGP(ctx context.Context, w io.Writer, b platform.BGPDriver, cb ports.Callback) error {
	asn, err := b.GetBGPLocalASN(ctx, cb)
	if errors.Is(err, entities.ErrNotFound) {
		fmt.Fprintln(w, "bgp is not configured")
		return nil
	}
	if err != nil {
		return err
	}
	neighbors, err := b.GetBGPNeighbors(ctx, cb)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "LOCAL AS\t%d\n", asn)
	for _, afi := range []string{entities.AFIIPv4, entities.AFIIPv6} {
		paths, err := b.GetBGPMaxPaths(ctx, cb, afi)
		switch {
		case errors.Is(err, entities.ErrNotFound):
			continue
		case err != nil:
			return err
		}
		fmt.Fprintf(tw, "MAX PATHS %s\t%d\n", afi, paths)
	}
	fmt.Fprintln(tw, "\nNEIGHBOR\tREMOTE AS")
	for _, n := range neighbors {
		fmt.Fprintf(tw, "%s\t%d\n", n.Address, n.RemoteAS)
	}
	return tw.Flush()
}

func newBGPLocalASCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "local-as <asn>",
		Short: "Set the local AS number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asn, err := entities.ParseASN(args[0])
			if err != nil {
				return err
			}
			return a.applyBGP(cmd.Context(), func(ctx context.Context, b platform.BGPDriver, cb ports.Callback) error {
				return b.BGPLocalASN(ctx, cb, entities.BGPLocalASNParams{ASN: asn})
			})
		},
	}
}

func newBGPNeighborCmd(a *app) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "neighbor <address> [remote-as]",
		Short: "Add or remove a neighbor",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := netip.ParseAddr(args[0])
			if err != nil {
				return entities.InvalidParameter("neighbor address %q: %v", args[0], err)
			}
			p := entities.BGPNeighborParams{Address: addr, Delete: remove}
			if len(args) == 2 {
				if p.RemoteAS, err = entities.ParseASN(args[1]); err != nil {
					return err
				}
			}
			return a.applyBGP(cmd.Context(), func(ctx context.Context, b platform.BGPDriver, cb ports.Callback) error {
				return b.BGPNeighbor(ctx, cb, p)
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the neighbor")
	return cmd
}

func newBGPMaxPathsCmd(a *app) *cobra.Command {
	var (
		afi    string
		remove bool
	)
	cmd := &cobra.Command{
		Use:   "max-paths [paths]",
		Short: "Set ECMP maximum-paths",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := entities.BGPMaxPathsParams{AFI: afi, Delete: remove}
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return entities.InvalidParameter("maximum-paths %q must be numeric", args[0])
				}
				p.Paths = n
			}
			return a.applyBGP(cmd.Context(), func(ctx context.Context, b platform.BGPDriver, cb ports.Callback) error {
				return b.BGPMaxPaths(ctx, cb, p)
			})
		},
	}
	cmd.Flags().StringVar(&afi, "afi", entities.AFIIPv4, "Address family: ipv4 or ipv6")
	cmd.Flags().BoolVar(&remove, "delete", false, "Remove maximum-paths")
	return cmd
}

func newBGPRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the BGP process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.applyBGP(cmd.Context(), func(ctx context.Context, b platform.BGPDriver, cb ports.Callback) error {
				return b.RemoveBGP(ctx, cb)
			})
		},
	}
}
