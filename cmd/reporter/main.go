package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/animal-report/internal/client"
	"github.com/ukydev/animal-report/internal/config"
	"github.com/ukydev/animal-report/internal/location"
	"github.com/ukydev/animal-report/internal/models"
	"github.com/ukydev/animal-report/internal/screen"
)

const menu = `Report an animal:
  1) dead
  2) injured
  q) quit`

// terminalView renders the screen on the console.
type terminalView struct {
	con *console
}

func (v terminalView) SetLoading(loading bool) {
	if loading {
		v.con.Println("Sending report...")
	}
}

func (v terminalView) Alert(title, message string) {
	v.con.Println(fmt.Sprintf("[%s] %s", title, message))
}

func buildScreen(cfg *config.Config, con *console) (*screen.ReportScreen, error) {
	var perms location.PermissionRequester
	switch cfg.Permission {
	case config.PermissionGranted:
		perms = location.FixedPermission{Granted: true}
	case config.PermissionDenied:
		perms = location.FixedPermission{Granted: false}
	case config.PermissionPrompt:
		perms = location.NewPromptPermission(con)
	default:
		return nil, fmt.Errorf("unsupported permission mode %q", cfg.Permission)
	}

	var reader location.PositionReader
	switch cfg.LocationSource {
	case config.SourceStatic:
		reader = location.StaticReader{Latitude: cfg.StaticLat, Longitude: cfg.StaticLon}
	case config.SourceSimulated:
		reader = location.NewSimulatedReader(cfg.JitterMeters, 0)
	case config.SourceMQTT:
		reader = location.NewMQTTReader(cfg.MQTTBroker, cfg.MQTTTopic, cfg.MQTTClientID)
	default:
		return nil, fmt.Errorf("unsupported location source %q", cfg.LocationSource)
	}

	return screen.NewReportScreen(gatedPermission{perms}, reader, client.New(cfg.ReportURL), terminalView{con: con}), nil
}

// run executes one press when a report type is given, otherwise shows the
// interactive menu. It returns the process exit code.
func run(ctx context.Context, args []string, con *console, s *screen.ReportScreen) int {
	if len(args) > 0 {
		reportType, err := models.ParseReportType(args[0])
		if err != nil {
			con.Println("usage: reporter [dead|injured]")
			return 2
		}
		go con.Run(ctx, nil)
		release := con.reserve()
		defer release()
		if s.RequestAndSend(withRelease(ctx, release), reportType) != screen.OutcomeSent {
			return 1
		}
		return 0
	}

	var wg sync.WaitGroup
	press := func(t models.ReportType) {
		// Reserved before the goroutine starts so a permission answer typed
		// right after the command waits for the prompt.
		release := con.reserve()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer release()
			outcome := s.RequestAndSend(withRelease(ctx, release), t)
			log.WithFields(log.Fields{"type": t, "outcome": outcome}).Debug("Press handled")
		}()
	}

	con.Println(menu)
	con.Run(ctx, func(line string) bool {
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "1", "dead":
			press(models.ReportDead)
		case "2", "injured":
			press(models.ReportInjured)
		case "q", "quit", "exit":
			return false
		case "":
		default:
			con.Println(menu)
		}
		return true
	})
	wg.Wait()
	return 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	con := newConsole(os.Stdin, os.Stdout)
	s, err := buildScreen(cfg, con)
	if err != nil {
		log.WithError(err).Fatal("Failed to build report screen")
	}

	log.WithFields(log.Fields{
		"report_url":      cfg.ReportURL(),
		"location_source": cfg.LocationSource,
		"permission":      cfg.Permission,
	}).Info("Starting animal reporter")

	code := run(ctx, os.Args[1:], con, s)
	stop()
	os.Exit(code)
}
