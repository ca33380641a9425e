package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imacodr/rojo/internal/fusefs"
	"github.com/imacodr/rojo/internal/logging"
	"github.com/imacodr/rojo/internal/project"
	"github.com/imacodr/rojo/internal/session"
	"github.com/imacodr/rojo/internal/version"
	"github.com/imacodr/rojo/internal/web"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

var logger = logging.Named("cli")

func main() {
	kingpin.CommandLine.HelpFlag.Short('h')
	kingpin.Version(version.Server)

	verbose := kingpin.Flag("verbose", "Enable verbose change logging.").Short('v').Bool()

	initCmd := kingpin.Command("init", "Create a starter project manifest.")
	initDir := initCmd.Arg("dir", "Directory to create the manifest in.").Default(".").String()

	serveCmd := kingpin.Command("serve", "Serve a project's virtual tree over HTTP.")
	serveProject := serveCmd.Arg("project", "Project directory or manifest file.").Default(".").String()
	servePort := serveCmd.Flag("port", "Override the manifest's servePort.").Int()
	serveMount := serveCmd.Flag("mount", "Also mount the tree read-only at this path (requires FUSE).").String()

	command := kingpin.Parse()
	logging.SetVerbose(*verbose)

	switch command {
	case "init":
		os.Exit(runInit(*initDir))
	case "serve":
		os.Exit(runServe(*serveProject, *servePort, *serveMount, *verbose))
	}
}

func runInit(dir string) int {
	file, err := project.InitDefault(dir)
	if err != nil {
		logger.Error("init failed", zap.Error(err))
		return 1
	}
	fmt.Printf("Created %s\n", file)
	return 0
}

func runServe(projectPath string, portOverride int, mountPoint string, verbose bool) int {
	proj, err := project.Load(projectPath)
	if err != nil {
		logger.Error("cannot load project", zap.Error(err))
		return 1
	}

	port := proj.ServePort
	if portOverride != 0 {
		port = portOverride
	}

	sess, err := session.New(proj, verbose)
	if err != nil {
		logger.Error("cannot start session", zap.Error(err))
		return 1
	}
	sess.Start()
	defer func() { _ = sess.Stop() }()

	var mounted *fusefs.FS
	if mountPoint != "" {
		mounted = fusefs.New(sess)
		if err := mounted.Mount(mountPoint); err != nil {
			logger.Error("fuse mount failed",
				zap.String("mountpoint", mountPoint), zap.Error(err))
			return 1
		}
	}

	server := web.NewServer(sess, port)
	banner(proj.Name, port)

	serveErrs := make(chan error, 1)
	go func() { serveErrs <- server.Run() }()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	code := 0
	select {
	case sig := <-sigs:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serveErrs:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
			code = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	if mounted != nil {
		if err := mounted.Unmount(mountPoint); err != nil {
			logger.Warn("unmount failed", zap.Error(err))
		}
	}
	return code
}

func banner(name string, port int) {
	heading := color.New(color.FgGreen, color.Bold)
	fmt.Printf("%s %s\n", heading.Sprint("rojo"), version.Server)
	fmt.Printf("Serving project %q on http://localhost:%d\n", name, port)
	fmt.Println("Press Ctrl+C to stop.")
}
