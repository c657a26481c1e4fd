package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"diary-service/internal/clients"
	"diary-service/internal/domain"
)

func addDiary(topLevel *cobra.Command, opts *globalOptions) {
	diaryCmd := &cobra.Command{
		Use:   "diary",
		Short: "Inspect diaries through a running service",
	}
	addDiaryShow(diaryCmd, opts)
	topLevel.AddCommand(diaryCmd)
}

func addDiaryShow(parent *cobra.Command, opts *globalOptions) {
	var (
		userID   int64
		grpcAddr string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a user's diary and counters via the gRPC lookup service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			if userID <= 0 {
				return errors.New("--user must be a positive id")
			}
			if grpcAddr == "" {
				grpcAddr = fmt.Sprintf("localhost:%d", opts.cfg.Server.GRPCPort)
			}

			client, err := clients.NewDiaryLookupClient(grpcAddr, opts.logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			user, err := client.GetUser(ctx, userID)
			if err != nil {
				return err
			}
			entries, err := client.ListDiary(ctx, userID)
			if err != nil {
				return err
			}
			stats, err := client.GetStats(ctx, userID)
			if err != nil {
				return err
			}
			renderDiary(cmd.OutOrStdout(), user, entries, stats)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id whose diary to show")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "lookup service address (default localhost:<server.grpc_port>)")
	parent.AddCommand(cmd)
}

func renderDiary(w io.Writer, user *domain.UserView, entries []*domain.DiaryEntry, stats domain.DiaryStats) {
	fmt.Fprintf(w, "%s <%s>\n", user.Username, user.Email)
	fmt.Fprintf(w, "total: %d, planned: %d, watching: %d, watched: %d\n",
		stats.Total, stats.Planned, stats.Watching, stats.Watched)
	if len(entries) == 0 {
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 60
	tbl.AddRow("ENTRY", "MOVIE", "STATUS", "RATING", "REVIEW")
	for _, e := range entries {
		rating := "-"
		if e.Rating != nil {
			rating = fmt.Sprintf("%d/5", *e.Rating)
		}
		tbl.AddRow(e.ID, e.MovieID, e.Status, rating, e.Review)
	}
	fmt.Fprintln(w, tbl)
}
