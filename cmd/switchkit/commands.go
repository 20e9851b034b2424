package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/switchkit/core/application/services"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/infrastructure/sink"
	"github.com/carlosrabelo/switchkit/core/platform"
)

const (
	publishJSON  = "json"
	publishAMQP  = "amqp"
	publishRedis = "redis"
)

func newPortChannelsCmd(a *app) *cobra.Command {
	var publish []string
	cmd := &cobra.Command{
		Use:   "port-channels",
		Short: "List port-channels with their members",
		Long: `List the port-channels of the switch selected with --target,
or of every configured switch when no target is given.

Examples:
  switchkit -t 10.0.0.1 port-channels
  switchkit port-channels --publish json --publish redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switches, err := a.switches()
			if err != nil {
				return err
			}
			publishers, err := a.publishers(cmd.OutOrStdout(), publish)
			if err != nil {
				return err
			}
			defer func() {
				for _, p := range publishers {
					_ = p.Close()
				}
			}()

			reports, err := a.service(withPublishers(publishers)...).CollectAll(cmd.Context(), switches)
			if !contains(publish, publishJSON) {
				printSummary(cmd.OutOrStdout(), reports)
			}
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&publish, "publish", "p", []string{publishJSON}, "Report destinations: json, amqp, redis")
	return cmd
}

func (a *app) publishers(stdout io.Writer, names []string) ([]ports.Publisher, error) {
	var publishers []ports.Publisher
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case publishJSON:
			publishers = append(publishers, sink.NewJSONWriter(stdout))
		case publishAMQP:
			amqpCfg := a.cfg.Publish.AMQP
			if amqpCfg.URL == "" {
				return nil, errors.New("publish.amqp.url is not configured")
			}
			p, err := sink.NewAMQPPublisher(amqpCfg.URL, amqpCfg.Exchange, amqpCfg.RoutingKey, a.log)
			if err != nil {
				return nil, err
			}
			publishers = append(publishers, p)
		case publishRedis:
			redisCfg := a.cfg.Publish.Redis
			if redisCfg.Addr == "" {
				return nil, errors.New("publish.redis.addr is not configured")
			}
			publishers = append(publishers, sink.NewRedisPublisher(redisCfg.Addr, redisCfg.Password, redisCfg.DB, redisCfg.KeyPrefix, redisCfg.TTL, a.log))
		default:
			return nil, fmt.Errorf("unknown publisher %q, must be json, amqp or redis", name)
		}
	}
	return publishers, nil
}

func printSummary(w io.Writer, reports []entities.InventoryReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tPLATFORM\tNAME\tMODE\tID\tMEMBERS")
	for _, r := range reports {
		for _, po := range r.PortChannels {
			members := make([]string, 0, len(po.Members))
			for _, m := range po.Members {
				members = append(members, m.Interface.String())
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", r.Target, r.Platform, po.Name, po.Mode, po.AggregateID, strings.Join(members, ", "))
		}
	}
	tw.Flush()
}

func newAdminStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "admin-state <interface> up|down",
		Short: "Enable or shut down an interface",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := entities.ParseInterfaceKey(args[0])
			if err != nil {
				return err
			}
			enabled, err := parseAdminState(args[1])
			if err != nil {
				return err
			}
			return a.apply(cmd.Context(), func(ctx context.Context, d platform.SwitchDriver, cb ports.Callback) error {
				return d.AdminState(ctx, cb, entities.AdminStateParams{Interface: key, Enabled: enabled})
			})
		},
	}
}

func newDescriptionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "description <interface> <text>",
		Short: "Set an interface description",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := entities.ParseInterfaceKey(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			return a.apply(cmd.Context(), func(ctx context.Context, d platform.SwitchDriver, cb ports.Callback) error {
				return d.Description(ctx, cb, entities.DescriptionParams{Interface: key, Description: text})
			})
		},
	}
}

func newAccessVLANCmd(a *app) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "access-vlan <interface> <vlan>",
		Short: "Assign an untagged VLAN to a switchport",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := entities.ParseInterfaceKey(args[0])
			if err != nil {
				return err
			}
			vlan, err := strconv.Atoi(args[1])
			if err != nil {
				return entities.InvalidParameter("vlan %q must be numeric", args[1])
			}
			return a.apply(cmd.Context(), func(ctx context.Context, d platform.SwitchDriver, cb ports.Callback) error {
				return d.AccessVLAN(ctx, cb, entities.AccessVLANParams{Interface: key, VLAN: vlan, Delete: remove})
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "Remove the VLAN from the switchport")
	return cmd
}

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the platform of each switch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switches, err := a.switches()
			if err != nil {
				return err
			}
			svc := a.service()
			var errs []error
			for _, sw := range switches {
				driver, _, err := svc.Driver(cmd.Context(), sw)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sw.Target, driver.Name())
			}
			return errors.Join(errs...)
		},
	}
}

func (a *app) apply(ctx context.Context, op func(context.Context, platform.SwitchDriver, ports.Callback) error) error {
	sw, err := a.targetSwitch()
	if err != nil {
		return err
	}
	return a.service().Apply(ctx, sw, op)
}

func parseAdminState(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "up", "enable", "no-shutdown":
		return true, nil
	case "down", "disable", "shutdown":
		return false, nil
	}
	return false, entities.InvalidParameter("admin state %q must be up or down", s)
}

func withPublishers(publishers []ports.Publisher) []services.Option {
	if len(publishers) == 0 {
		return nil
	}
	return []services.Option{services.WithPublishers(publishers...)}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}
