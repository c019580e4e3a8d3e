package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func initLogging() {
	logDir := "./logs"
	_ = os.MkdirAll(logDir, 0755)

	fileLogger := &lumberjack.Logger{
		Filename:   logDir + "/warpsim.log",
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
		Compress:   true,
	}

	logrus.SetOutput(io.MultiWriter(os.Stderr, fileLogger))
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logrus.SetLevel(logrus.InfoLevel)
}

func main() {
	initLogging()

	if err := rootCmd.ParseFlags(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if scenarioFlag != "" {
		rootCmd.SetArgs([]string{"load", scenarioFlag})
		if code := Execute(); code != 0 {
			os.Exit(code)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("received signal, shutting down")
		if cn.sim != nil {
			cn.sim.Close()
		}
		os.Exit(0)
	}()

	fmt.Println("warpsim console ready; commands: load send topk toggle view drawpaths clearpaths screenshot quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		rootCmd.SetArgs(strings.Fields(line))
		if code := Execute(); code != 0 {
			logrus.Warnf("command failed: %s", line)
		}
	}

	if cn.sim != nil {
		cn.sim.Close()
	}
	os.Exit(0)
}
