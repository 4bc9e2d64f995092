package cli

import (
	"bizstate/internal/core"
	"bizstate/internal/simulate"
	"bizstate/pkg/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newSeedCommand(opts *RootOptions) *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the seed data set to storage",
		Long: `Write the seed data set to every collection that has no stored value yet.

With --force every collection is overwritten. --file replaces the seed
(and BIZSTATE_SEED_FILE) with a YAML document.`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, _ []string, s *session) error {
			seed := s.seed
			if file != "" {
				var err error
				if seed, err = core.LoadSeedFile(file); err != nil {
					return WrapExitError(ExitCommandError, "load seed", err)
				}
			}
			written, err := s.ws.ApplySeed(cmd.Context(), seed, force)
			if err != nil {
				return err
			}
			return s.out.emit(map[string]any{"written": written}, func(w io.Writer) {
				if len(written) == 0 {
					fmt.Fprintln(w, "nothing to seed: every collection is already stored")
					return
				}
				fmt.Fprintf(w, "seeded %s\n", strings.Join(written, ", "))
			})
		}),
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML seed file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite collections that are already stored")
	return cmd
}

func collectionKeys() []string {
	keys := make([]string, 0, len(domain.Collections))
	for _, c := range domain.Collections {
		keys = append(keys, c.Key)
	}
	return keys
}

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "list <collection>",
		Short:     "Print one collection as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: collectionKeys(),
		RunE: withSession(opts, func(_ *cobra.Command, args []string, s *session) error {
			c, ok := domain.CollectionByKey(args[0])
			if !ok {
				return WrapExitError(ExitCommandError, fmt.Sprintf("unknown collection %q (one of %s)", args[0], strings.Join(collectionKeys(), ", ")), nil)
			}
			v, _ := s.ws.Collection(c.Key)
			return s.out.emit(v, nil)
		}),
	}
}

func newActiveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the active business",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(_ *cobra.Command, _ []string, s *session) error {
			b, err := s.ws.ActiveBusiness()
			if errors.Is(err, domain.ErrNoActiveEntity) {
				return WrapExitError(ExitCommandError, "no active business", err)
			}
			if err != nil {
				return err
			}
			stale := s.ws.Active.Stored() != b.ID
			return s.out.emit(map[string]any{"id": b.ID, "name": b.Name, "stored": s.ws.Active.Stored(), "healed": stale}, func(w io.Writer) {
				fmt.Fprintf(w, "%s\t%s\n", b.ID, b.Name)
				if stale {
					fmt.Fprintf(w, "(stored pointer %q is stale; using first business)\n", s.ws.Active.Stored())
				}
			})
		}),
	}
}

func newSwitchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <business-id>",
		Short: "Make another business active",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			id := domain.BusinessID(args[0])
			if err := s.ws.SwitchBusiness(cmd.Context(), id); err != nil {
				var nf domain.ErrNotFound
				if errors.As(err, &nf) {
					return WrapExitError(ExitCommandError, "switch business", err)
				}
				return err
			}
			return s.out.emit(map[string]any{"active": id}, func(w io.Writer) {
				fmt.Fprintf(w, "active business is now %s\n", id)
			})
		}),
	}
}

func newNotifyCommand(opts *RootOptions) *cobra.Command {
	var kind, link string
	cmd := &cobra.Command{
		Use:   "notify <title> <message>",
		Short: "Add a notification",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			n, err := s.ws.Notifier.Notify(cmd.Context(), args[0], args[1], domain.NotificationKind(kind), link)
			if err != nil {
				return WrapExitError(ExitCommandError, "notify", err)
			}
			return s.out.emit(n, func(w io.Writer) { fmt.Fprintln(w, n.ID) })
		}),
	}
	cmd.Flags().StringVar(&kind, "kind", string(domain.NotificationInfo), "info|success|warning|error")
	cmd.Flags().StringVar(&link, "link", "", "optional in-app link")
	return cmd
}

func newReadCommand(opts *RootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "read [notification-id]",
		Short: "Mark notifications as read",
		Args: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) || len(args) > 1 {
				return WrapExitError(ExitCommandError, "pass exactly one notification id or --all", nil)
			}
			return nil
		},
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			var err error
			if all {
				err = s.ws.Notifier.MarkAllRead(cmd.Context())
			} else {
				err = s.ws.Notifier.MarkRead(cmd.Context(), domain.NotificationID(args[0]))
			}
			var nf domain.ErrNotFound
			if errors.As(err, &nf) {
				return WrapExitError(ExitCommandError, "mark read", err)
			}
			if err != nil {
				return err
			}
			unread := len(s.ws.Notifier.Unread())
			return s.out.emit(map[string]any{"unread": unread}, func(w io.Writer) {
				fmt.Fprintf(w, "%d unread\n", unread)
			})
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "mark every notification as read")
	return cmd
}

func newCheckRefsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-refs",
		Short: "Report identifiers that point at missing records",
		Long:  "Report identifiers that point at missing records. Nothing is repaired; the exit code is 1 when any are found.",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(_ *cobra.Command, _ []string, s *session) error {
			refs := s.ws.CheckReferences()
			if refs == nil {
				refs = []domain.DanglingReference{}
			}
			if err := s.out.emit(refs, func(w io.Writer) {
				for _, r := range refs {
					fmt.Fprintf(w, "%s %s: %s -> %s %s\n", r.From, r.FromID, r.Field, r.Target, r.TargetID)
				}
				if len(refs) == 0 {
					fmt.Fprintln(w, "no dangling references")
				}
			}); err != nil {
				return err
			}
			if len(refs) > 0 {
				return WrapExitError(ExitFailure, fmt.Sprintf("%d dangling reference(s)", len(refs)), nil)
			}
			return nil
		}),
	}
}

func newDumpCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every collection and the active pointer as JSON",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(_ *cobra.Command, _ []string, s *session) error {
			return s.out.emit(s.ws.Snapshot(), nil)
		}),
	}
}

func newDemoCommand(opts *RootOptions) *cobra.Command {
	var latency time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run simulated payment, flow generation and site import",
		Long: `Run a payment, a flow generation and a website import against the active
business using in-process simulators, each after a simulated delay, then
print the unread notifications.`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(_ *cobra.Command, _ []string, s *session) error {
			biz, err := s.ws.ActiveBusiness()
			if err != nil {
				return WrapExitError(ExitCommandError, "demo needs an active business", err)
			}
			gateway := &simulate.Gateway{Latency: latency}
			gen := &simulate.Generator{Latency: latency}
			crawler := &simulate.Crawler{Latency: latency}
			var customer domain.CustomerID
			if cs := s.ws.Customers.Filter(func(c domain.Customer) bool { return c.BusinessID == biz.ID }); len(cs) > 0 {
				customer = cs[0].ID
			}
			site := biz.Website
			if site == "" {
				site = "https://" + strings.ToLower(strings.ReplaceAll(biz.Name, " ", "")) + ".example"
			}
			jobs := []*core.Pending{
				s.ws.Schedule(latency, func(ctx context.Context) error {
					_, err := s.ws.RecordPayment(ctx, gateway, core.PaymentRequest{BusinessID: biz.ID, CustomerID: customer, Amount: 25, Description: "demo charge"})
					return err
				}),
				s.ws.Schedule(latency, func(ctx context.Context) error {
					_, err := s.ws.GenerateFlow(ctx, gen, biz.ID, "welcome new customers and show the menu")
					return err
				}),
				s.ws.Schedule(latency, func(ctx context.Context) error {
					_, err := s.ws.ImportSite(ctx, crawler, biz.ID, site)
					return err
				}),
			}
			var errs []error
			for _, p := range jobs {
				if err := p.Wait(); err != nil {
					errs = append(errs, err)
				}
			}
			if err := errors.Join(errs...); err != nil {
				return err
			}
			unread := s.ws.Notifier.Unread()
			sort.SliceStable(unread, func(i, j int) bool { return unread[i].Title < unread[j].Title })
			return s.out.emit(unread, func(w io.Writer) {
				for _, n := range unread {
					fmt.Fprintf(w, "[%s] %s: %s\n", n.Kind, n.Title, n.Message)
				}
			})
		}),
	}
	cmd.Flags().DurationVar(&latency, "latency", 200*time.Millisecond, "simulated collaborator latency")
	return cmd
}
