package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"elfinfo/elfrw"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the resolved command-line and environment settings.
type Config struct {
	Verbose    bool
	Parallel   bool
	MaxWorkers int
	NoColor    bool
}

// ProcessResult holds the rendered report of one input file.
type ProcessResult struct {
	Filename string
	Report   []byte
	Error    error
}

const versionString = "elfinfo, version 0.1"

var (
	cfgFile string

	ErrFilesFailed = errors.New("one or more files could not be read")

	colorOK   = color.New(color.FgGreen).SprintFunc()
	colorFail = color.New(color.FgRed).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:           "elfinfo [OPTIONS] FILE...",
	Short:         "Print the file, section and program headers of ELF files",
	Version:       versionString,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := loadConfig()
		if config.Verbose {
			log.SetLevel(log.DebugLevel)
		}
		color.NoColor = config.NoColor

		results := processFiles(config, args)
		return writeResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), config, results)
	},
}

func init() {
	log.SetHandler(clihandler.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/elfinfo/config.yaml)")
	rootCmd.Flags().BoolP("verbose", "V", false, "verbose output")
	rootCmd.Flags().BoolP("parallel", "j", false, "process files in parallel")
	rootCmd.Flags().Int("workers", 4, "maximum number of parallel workers")
	rootCmd.Flags().Bool("no-color", false, "disable colorized output")
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("parallel", rootCmd.Flags().Lookup("parallel"))
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("no-color", rootCmd.Flags().Lookup("no-color"))
	viper.BindEnv("no-color", "NO_COLOR")

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "elfinfo"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("elfinfo")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func loadConfig() *Config {
	config := &Config{
		Verbose:    viper.GetBool("verbose"),
		Parallel:   viper.GetBool("parallel"),
		MaxWorkers: viper.GetInt("workers"),
		NoColor:    viper.GetBool("no-color"),
	}
	config.MaxWorkers = clampWorkers(config.MaxWorkers)
	return config
}

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > 16 {
		return 16
	}
	return n
}

func processFile(filename string) *ProcessResult {
	result := &ProcessResult{Filename: filename}

	parsed, err := elfrw.ReadELF(filename)
	if err != nil {
		result.Error = err
		return result
	}

	logHeaders(parsed)

	var buf bytes.Buffer
	if err := elfrw.PrintReport(&buf, parsed); err != nil {
		result.Error = err
		return result
	}
	result.Report = buf.Bytes()
	return result
}

// logHeaders emits the parsed headers, including section names and segment
// offsets that the report leaves out, at debug level.
func logHeaders(parsed *elfrw.ParsedFile) {
	ctx := log.WithField("file", filepath.Base(parsed.Path))
	ctx.WithFields(log.Fields{
		"sections": len(parsed.Sections),
		"segments": len(parsed.Progs),
	}).Debugf("Parsed ELF headers: %s", &parsed.Header)
	for i := range parsed.Sections {
		ctx.WithField("index", i).Debug(parsed.Sections[i].String())
	}
	for i := range parsed.Progs {
		ctx.WithField("index", i).Debug(parsed.Progs[i].String())
	}
}

func processFiles(config *Config, filenames []string) []ProcessResult {
	if config.Parallel && len(filenames) > 1 {
		log.Debugf("Processing %d files with %d workers...", len(filenames), config.MaxWorkers)
		return processFilesParallel(filenames, config.MaxWorkers)
	}
	return processFilesSequential(filenames)
}

func processFilesSequential(filenames []string) []ProcessResult {
	results := make([]ProcessResult, 0, len(filenames))
	for _, filename := range filenames {
		results = append(results, *processFile(filename))
	}
	return results
}

// processFilesParallel keeps results in argument order so that the output
// does not depend on scheduling.
func processFilesParallel(filenames []string, workers int) []ProcessResult {
	jobs := make(chan int, len(filenames))
	results := make([]ProcessResult, len(filenames))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = *processFile(filenames[idx])
			}
		}()
	}

	for idx := range filenames {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()
	return results
}

func writeResults(stdout, stderr io.Writer, config *Config, results []ProcessResult) error {
	failed := 0
	for i := range results {
		result := &results[i]
		if result.Error != nil {
			failed++
			log.WithError(result.Error).WithField("file", result.Filename).Error("failed to read ELF headers")
		} else if _, err := stdout.Write(result.Report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if config.Verbose {
			printResult(stderr, result)
		}
	}

	if len(results) > 1 && config.Verbose {
		_, _ = fmt.Fprintf(stderr, "\nSummary:\n")
		_, _ = fmt.Fprintf(stderr, "  Files processed: %d\n", len(results))
		_, _ = fmt.Fprintf(stderr, "  Successful: %d\n", len(results)-failed)
		_, _ = fmt.Fprintf(stderr, "  Failed: %d\n", failed)
	}

	if failed > 0 {
		return fmt.Errorf("%w (%d of %d)", ErrFilesFailed, failed, len(results))
	}
	return nil
}

func printResult(w io.Writer, result *ProcessResult) {
	if result.Error != nil {
		_, _ = fmt.Fprintf(w, "  %s %s: %v\n", colorFail("FAIL"), filepath.Base(result.Filename), result.Error)
		return
	}
	_, _ = fmt.Fprintf(w, "  %s %s: %d bytes of report\n", colorOK("OK"), filepath.Base(result.Filename), len(result.Report))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
