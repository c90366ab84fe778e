package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/cobweb/internal/config"
	"github.com/rohmanhakim/cobweb/internal/mdconvert"
	"github.com/rohmanhakim/cobweb/internal/metadata"
	"github.com/rohmanhakim/cobweb/internal/report"
	"github.com/rohmanhakim/cobweb/internal/scheduler"
	"github.com/rohmanhakim/cobweb/internal/storage"
	"github.com/rohmanhakim/cobweb/pkg/fileutil"
	"github.com/rohmanhakim/cobweb/pkg/hashutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	seedURL     string
	hops        int
	tags        []string
	classes     []string
	selectors   []string
	idValues    []string
	attributes  []string
	attrValues  []string
	concurrency int
	timeout     time.Duration
	userAgent   string
	format      string
	output      string
	logLevel    string
	logFormat   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cobweb",
	Short: "Scrape a page and the pages it links to.",
	Long: `cobweb fetches a seed page, follows the first --hops links found on it
(same-host links first, then external ones) and extracts elements from every
fetched page by tag, class, attribute and CSS selector.

The result is written as JSON, Markdown or plain text to stdout or --output.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}
		outFormat, err := ResolveFormat()
		if err != nil {
			return err
		}
		seed := cfg.SeedURL()
		recorder, err := newRecorder(cmd.ErrOrStderr(), seed)
		if err != nil {
			return err
		}

		s := scheduler.NewScheduler(&recorder)
		execution, err := s.ExecuteScrape(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("scrape %s: %w", seed.String(), err)
		}

		rep := report.NewBuilder(mdconvert.NewRule(&recorder)).Build(execution)
		return emit(cmd.OutOrStdout(), rep, outFormat, &recorder)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, YAML or JSON (e.g., ./cobweb.yaml)")
	rootCmd.PersistentFlags().StringVar(&seedURL, "url", "", "page the scrape starts from")
	rootCmd.PersistentFlags().IntVar(&hops, "hops", config.DefaultHops, "number of links on the seed page to follow (0 scrapes the seed alone)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "maximum number of pages fetched at once (default 10)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for each HTTP request (default 10s)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "report format: json, markdown or text (default from --output extension, else json)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")

	rootCmd.Flags().StringArrayVar(&tags, "tag", []string{}, "element name to extract (can be repeated)")
	rootCmd.Flags().StringArrayVar(&classes, "class", []string{}, "class name, combined with every --tag (can be repeated)")
	rootCmd.Flags().StringArrayVar(&selectors, "selector", []string{}, "CSS selector; the literal `id` also looks up every --id-value (can be repeated)")
	rootCmd.Flags().StringArrayVar(&idValues, "id-value", []string{}, "element id looked up by the `id` selector (can be repeated)")
	rootCmd.Flags().StringArrayVar(&attributes, "attribute", []string{}, "attribute name, combined with every --tag and --attr-value (can be repeated)")
	rootCmd.Flags().StringArrayVar(&attrValues, "attr-value", []string{}, "exact attribute value (can be repeated)")

	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfigWithError builds the run configuration. A config file, when
// given, is used as is; otherwise the flags are applied over the defaults.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if strings.TrimSpace(seedURL) == "" {
		return config.Config{}, fmt.Errorf("%w: --url or --config-file is required", config.ErrInvalidConfig)
	}
	parsed, err := url.Parse(strings.TrimSpace(seedURL))
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: error parsing --url %s: %s", config.ErrInvalidConfig, seedURL, err)
	}

	configBuilder := config.WithDefault(*parsed).
		WithHops(hops).
		WithTags(tags).
		WithClasses(classes).
		WithSelectors(selectors).
		WithIDValues(idValues).
		WithAttributes(attributes).
		WithAttrValues(attrValues)

	if concurrency != 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if timeout != 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	return configBuilder.Build()
}

// ResolveFormat picks the report format from --format, falling back to the
// extension of --output and then to JSON.
func ResolveFormat() (report.Format, error) {
	if format != "" {
		return report.ParseFormat(format)
	}
	switch fileutil.GetFileExtension(output) {
	case "md", "markdown":
		return report.FormatMarkdown, nil
	case "txt", "text":
		return report.FormatText, nil
	default:
		return report.FormatJSON, nil
	}
}

func newRecorder(logOutput io.Writer, seed url.URL) (metadata.Recorder, error) {
	logger, err := NewLogger(logOutput, logLevel, logFormat)
	if err != nil {
		return metadata.Recorder{}, err
	}
	runID := hashutil.ShortID(seed.String()+"@"+strconv.FormatInt(time.Now().UnixNano(), 10), 8)
	return metadata.NewRecorder(logger, runID), nil
}

// emit renders rep and writes it to --output, or to stdout when unset.
func emit(stdout io.Writer, rep report.Report, outFormat report.Format, recorder *metadata.Recorder) error {
	if output == "" {
		return report.Render(stdout, rep, outFormat)
	}

	content, err := report.Bytes(rep, outFormat)
	if err != nil {
		return err
	}
	sink := storage.NewLocalSink(recorder)
	if _, writeErr := sink.Write(output, content, hashutil.HashAlgoBLAKE3); writeErr != nil {
		return writeErr
	}
	return nil
}

// RunForTest executes the command tree with args and captures its output.
func RunForTest(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	return rootCmd.ExecuteContext(ctx)
}

func ResetFlags() {
	cfgFile = ""
	seedURL = ""
	hops = config.DefaultHops
	tags = []string{}
	classes = []string{}
	selectors = []string{}
	idValues = []string{}
	attributes = []string{}
	attrValues = []string{}
	concurrency = 0
	timeout = 0
	userAgent = ""
	format = ""
	output = ""
	logLevel = "info"
	logFormat = "text"
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetURLForTest(raw string) {
	seedURL = raw
}

func SetHopsForTest(n int) {
	hops = n
}

func SetTagsForTest(values []string) {
	tags = values
}

func SetClassesForTest(values []string) {
	classes = values
}

func SetSelectorsForTest(values []string) {
	selectors = values
}

func SetIDValuesForTest(values []string) {
	idValues = values
}

func SetAttributesForTest(values []string) {
	attributes = values
}

func SetAttrValuesForTest(values []string) {
	attrValues = values
}

func SetConcurrencyForTest(n int) {
	concurrency = n
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetFormatForTest(f string) {
	format = f
}

func SetOutputForTest(path string) {
	output = path
}
