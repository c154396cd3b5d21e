// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	apiAddr := strings.TrimSpace(os.Getenv("API_ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	apiKey := strings.TrimSpace(os.Getenv("BROWSE_API_KEY"))
	visitor := strings.TrimSpace(os.Getenv("VISITOR_DATA"))
	insecure := strings.TrimSpace(os.Getenv("INSECURE_TLS"))
	webhook := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (write routes will 401/403).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes will 401).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if apiAddr == "" {
		warn("API_ADDR is empty; default in your app may be used.")
	} else {
		ok("API_ADDR=" + apiAddr)
	}

	if db == "" {
		warn("DATABASE_URL empty — API will use the in-memory store; probe history is lost on restart.")
	} else {
		ok("DATABASE_URL present")
	}

	if apiKey == "" {
		warn("BROWSE_API_KEY empty — using the baked-in key; the service may rotate it at any time.")
	} else {
		ok("BROWSE_API_KEY present")
	}
	if visitor == "" {
		warn("VISITOR_DATA empty — using the baked-in visitor token; stale tokens often get the open-in-app wall.")
	} else {
		ok("VISITOR_DATA present")
	}

	if insecure == "" || insecure == "true" || insecure == "1" {
		warn("INSECURE_TLS is on (default) — cert verification disabled for probe requests.")
	} else {
		ok("INSECURE_TLS=" + insecure)
	}

	if webhook == "" {
		warn("SLACK_WEBHOOK empty — no alerts will be sent.")
	} else {
		ok("SLACK_WEBHOOK present")
	}

	ok("preflight passed")
}
