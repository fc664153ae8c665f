// Package main is a small operator CLI over the fraud review API. It uses
// the same typed client the dashboards use, and the mock backend when
// -mock is set, so flows can be exercised without a running server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"bastion/internal/client"
	"bastion/internal/config"
	"bastion/internal/models"
	"bastion/internal/pager"
)

func main() {
	mock := flag.Bool("mock", false, "use generated mock data instead of the live API")
	baseURL := flag.String("url", "", "API base URL (defaults to BASTION_API_URL)")
	token := flag.String("token", os.Getenv("BASTION_ADMIN_TOKEN"), "admin bearer token")
	page := flag.Int("page", 1, "page to display for list commands")
	limit := flag.Int("limit", 10, "page size for list commands")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	api := buildAPI(*mock, *baseURL, *token)
	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultRequestTimeout)
	defer cancel()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "health":
		err = showHealth(ctx, api)
	case "users":
		err = showUsers(ctx, api, *page, *limit)
	case "user":
		err = requireArg(1, "user <id>", func(id string) error {
			return showUser(ctx, api, id)
		})
	case "search":
		err = requireArg(1, "search <query>", func(q string) error {
			return showSearch(ctx, api, q, *page, *limit)
		})
	case "flagged":
		err = showFlagged(ctx, api, *limit)
	case "stats":
		err = showStats(ctx, api)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: bastionctl [flags] <command>

commands:
  health            check API liveness
  users             browse the user list (use -page / -limit)
  user <id>         show one user with claim history
  search <query>    search users by name or email
  flagged           list flagged claims awaiting review
  stats             show dashboard summary stats`)
	flag.PrintDefaults()
}

func buildAPI(mock bool, baseURL, token string) client.API {
	if mock {
		return client.NewFake(time.Now().UnixNano(), 40)
	}

	if baseURL == "" {
		baseURL = config.APIBaseURL()
	}
	opts := []client.Option{client.WithAPIKey(config.APIKey())}
	if token != "" {
		opts = append(opts, client.WithHeader("Authorization", "Bearer "+token))
	}
	return client.New(baseURL, opts...)
}

func requireArg(n int, form string, fn func(string) error) error {
	if flag.NArg() <= n {
		return fmt.Errorf("usage: bastionctl %s", form)
	}
	return fn(flag.Arg(n))
}

func showHealth(ctx context.Context, api client.API) error {
	health, err := api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s v%s at %s\n", health.Service, health.Status, health.Version, health.Timestamp)
	return nil
}

// showUsers drives the same pager the dashboards use, jumping straight to
// the requested page.
func showUsers(ctx context.Context, api client.API, page, limit int) error {
	p := pager.New(func(ctx context.Context, page, limit int) ([]models.UserSummary, models.Pagination, error) {
		resp, err := api.UsersList(ctx, page, limit)
		if err != nil {
			return nil, models.Pagination{}, err
		}
		return resp.Users, resp.Pagination, nil
	}, pager.WithLimit[models.UserSummary](limit), pager.WithoutPreload[models.UserSummary]())
	defer p.Close()

	if err := p.GoTo(ctx, page); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tRISK\tFLAGGED\tDISPUTES\tPENDING")
	for _, u := range p.Items() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%d\t%d\n",
			u.FullName, u.KYCEmail, u.RiskScore, u.IsFlagged, u.TotalDisputes, u.PendingDisputes)
	}
	w.Flush()
	fmt.Printf("page %d of %d (%d users)\n", p.Page(), p.TotalPages(), p.Pagination().Total)
	return nil
}

func showUser(ctx context.Context, api client.API, id string) error {
	detail, err := api.UserDetails(ctx, id)
	if err != nil {
		return err
	}

	u := detail.User
	fmt.Printf("%s <%s>\n", u.FullName, u.KYCEmail)
	fmt.Printf("risk %d, flagged %t, %d disputes ($%.2f total)\n",
		u.RiskScore, u.IsFlagged, u.TotalDisputes, u.TotalClaimValue)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTORE\tSTATUS\tVALUE")
	for _, claim := range detail.Claims {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\n",
			claim.CreatedAt.Format("2006-01-02"), claim.StoreName, claim.Status, claim.TotalValue)
	}
	return w.Flush()
}

func showSearch(ctx context.Context, api client.API, query string, page, limit int) error {
	resp, err := api.SearchUsers(ctx, query, page, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tRISK\tFLAGGED")
	for _, u := range resp.Users {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", u.FullName, u.KYCEmail, u.RiskScore, u.IsFlagged)
	}
	w.Flush()
	fmt.Printf("page %d of %d (%d matches)\n",
		resp.Pagination.Page, resp.Pagination.Pages, resp.Pagination.Total)
	return nil
}

func showFlagged(ctx context.Context, api client.API, limit int) error {
	resp, err := api.FlaggedClaims(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLAIM\tSTORE\tRISK\tVALUE\tITEMS")
	for _, claim := range resp.FlaggedClaims {
		names := make([]string, 0, len(claim.Items))
		for _, item := range claim.Items {
			names = append(names, item.ItemName)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t$%.2f\t%s\n",
			claim.ID, claim.StoreName, claim.RiskScore, claim.TotalValue, strings.Join(names, ", "))
	}
	w.Flush()
	fmt.Printf("%d flagged claims\n", resp.Total)
	return nil
}

func showStats(ctx context.Context, api client.API) error {
	stats, err := api.SummaryStats(ctx, models.Range1Month)
	if err != nil {
		return err
	}
	fmt.Printf("disputes: %d total, %d approved (%.1f%% approval)\n",
		stats.TotalSuspiciousDisputes, stats.TotalApprovedDisputes, stats.ApprovalRate)
	return nil
}
