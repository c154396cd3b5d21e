package main

import (
	"context"
	"os"

	"github.com/hamed0406/browseprobe/internal/config"
	"github.com/hamed0406/browseprobe/internal/probe"
	"github.com/hamed0406/browseprobe/internal/report"
)

// Runs one probe per configured browse ID, strictly in order, and prints a
// block per probe. Probe failures are part of the report, never a reason to
// stop or to exit non-zero.
func main() {
	cfg := config.FromEnv()

	chk := probe.NewBrowseChecker(probe.Options{
		Endpoint:      cfg.Endpoint,
		APIKey:        cfg.APIKey,
		VisitorData:   cfg.VisitorData,
		ClientName:    cfg.ClientName,
		ClientVersion: cfg.ClientVersion,
		ClientNameID:  cfg.ClientNameID,
		UserAgent:     cfg.UserAgent,
		GL:            cfg.GL,
		HL:            cfg.HL,
		Timeout:       cfg.Timeout,
		InsecureTLS:   cfg.InsecureTLS,
	})

	report.RunSequence(context.Background(), os.Stdout, chk, cfg.BrowseIDs)
}
