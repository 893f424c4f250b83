// Package main provides a terminal chat client that picks the sampling
// temperature from each prompt.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/teilomillet/groqchat/chat"
	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/llm"
	"github.com/teilomillet/groqchat/providers"
	"github.com/teilomillet/groqchat/utils"
)

// cmdFlags holds all command-line flags
type cmdFlags struct {
	apiKey      string
	provider    string
	model       string
	debugLevel  string
	outputDir   string
	logFile     string
	envFile     string
	timeout     time.Duration
	retryDelay  time.Duration
	maxRetries  int
	maxTokens   int
	memory      int
	temperature float64
	analyze     bool
}

// parseFlags parses command-line flags
func parseFlags() *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.provider, "provider", "", "LLM provider (groq, openai)")
	flag.StringVar(&flags.model, "model", "", "LLM model")
	flag.Float64Var(&flags.temperature, "temperature", -1, "Fixed temperature in [0, 1]; -1 infers it from each prompt")
	flag.IntVar(&flags.maxTokens, "max-tokens", 0, "LLM max tokens")
	flag.DurationVar(&flags.timeout, "timeout", 0, "LLM timeout")
	flag.StringVar(&flags.apiKey, "api-key", "", "API key for the specified provider")
	flag.IntVar(&flags.maxRetries, "max-retries", -1, "Maximum number of retries for API calls")
	flag.DurationVar(&flags.retryDelay, "retry-delay", 0, "Initial delay between retries")
	flag.StringVar(&flags.debugLevel, "debug-level", "", "Debug level (debug, info, warn, error, off)")
	flag.StringVar(&flags.outputDir, "output-dir", "", "Directory for saved code blocks")
	flag.StringVar(&flags.logFile, "log-file", "", "Write logs to this rotated file instead of stderr")
	flag.StringVar(&flags.envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	flag.IntVar(&flags.memory, "memory", -1, "Token budget for conversation history; 0 disables it")
	flag.BoolVar(&flags.analyze, "analyze", false, "Print the temperature analysis of the prompt without calling the API")
	flag.Parse()
	return flags
}

func main() {
	flags := parseFlags()

	if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		exitWithError("Error loading %s: %v\n", flags.envFile, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		exitWithError("Error reading configuration: %v\n", err)
	}
	opts, err := prepareConfigOptions(flags)
	if err != nil {
		exitWithError("Error parsing flags: %v\n", err)
	}
	config.ApplyOptions(cfg, opts...)

	logger, closeLog := createLogger(cfg)
	defer closeLog()

	if model, changed := defaultModelFor(cfg); changed {
		logger.Warn("Model not offered by provider, using its default", "provider", cfg.Provider, "requested", cfg.Model, "model", model)
		cfg.Model = model
	}

	if flags.analyze {
		analyzePrompt(cfg, strings.Join(flag.Args(), " "))
		return
	}

	session, err := createSession(cfg, logger)
	if err != nil {
		exitWithError("Error creating chat session: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(flag.Args()) > 0 {
		if err := submit(ctx, session, strings.Join(flag.Args(), " "), os.Stdout); err != nil {
			closeLog()
			exitWithError("Error generating response: %v\n", err)
		}
		return
	}
	runInteractive(ctx, session, os.Stdin, os.Stdout)
}

// exitWithError prints an error message and exits
func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func prepareConfigOptions(flags *cmdFlags) ([]config.ConfigOption, error) {
	var configOpts []config.ConfigOption

	if flags.provider != "" {
		configOpts = append(configOpts, config.SetProvider(flags.provider))
	}
	if flags.model != "" {
		configOpts = append(configOpts, config.SetModel(flags.model))
	}
	if flags.temperature != -1 {
		configOpts = append(configOpts, config.SetTemperature(flags.temperature))
	}
	if flags.maxTokens != 0 {
		configOpts = append(configOpts, config.SetMaxTokens(flags.maxTokens))
	}
	if flags.timeout != 0 {
		configOpts = append(configOpts, config.SetTimeout(flags.timeout))
	}
	if flags.apiKey != "" {
		configOpts = append(configOpts, config.SetAPIKey(flags.apiKey))
	}
	if flags.maxRetries >= 0 {
		configOpts = append(configOpts, config.SetMaxRetries(flags.maxRetries))
	}
	if flags.retryDelay != 0 {
		configOpts = append(configOpts, config.SetRetryDelay(flags.retryDelay))
	}
	if flags.outputDir != "" {
		configOpts = append(configOpts, config.SetOutputDir(flags.outputDir))
	}
	if flags.logFile != "" {
		configOpts = append(configOpts, config.SetLogFile(flags.logFile))
	}
	if flags.memory >= 0 {
		configOpts = append(configOpts, config.SetMemory(flags.memory))
	}
	if flags.debugLevel != "" {
		var level utils.LogLevel
		if err := level.UnmarshalText([]byte(flags.debugLevel)); err != nil {
			return nil, err
		}
		configOpts = append(configOpts, config.SetLogLevel(level))
	}
	return configOpts, nil
}

func createLogger(cfg *config.Config) (utils.Logger, func()) {
	if cfg.Logger != nil {
		return cfg.Logger, func() {}
	}
	if cfg.LogFile == "" {
		return utils.NewLogger(cfg.LogLevel), func() {}
	}
	logger, closer := utils.NewFileLogger(cfg.LogFile, cfg.LogLevel, utils.LogFileOptions{MaxBackups: 3})
	return logger, func() { _ = closer.Close() }
}

// defaultModelFor returns the provider's default model when cfg names a model
// the provider does not offer.
func defaultModelFor(cfg *config.Config) (string, bool) {
	if cfg.AllowCustomModels || providers.IsSupportedModel(cfg.Provider, cfg.Model) {
		return cfg.Model, false
	}
	models := providers.SupportedModels(cfg.Provider)
	if len(models) == 0 {
		return cfg.Model, false
	}
	return models[0], true
}

func analyzePrompt(cfg *config.Config, prompt string) {
	r, err := chat.NewRegulator(cfg.Regulator)
	if err != nil {
		exitWithError("Error creating regulator: %v\n", err)
	}
	out, err := json.MarshalIndent(r.Analyze(prompt), "", "  ")
	if err != nil {
		exitWithError("Error encoding analysis: %v\n", err)
	}
	fmt.Println(string(out))
}

func createSession(cfg *config.Config, logger utils.Logger) (*chat.Session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg, logger, providers.NewProviderRegistry())
	if err != nil {
		return nil, err
	}

	opts := []chat.Option{chat.WithLogger(logger)}
	if cfg.MemoryTokens > 0 {
		counter, err := llm.NewTiktokenCounter(cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create token counter: %w", err)
		}
		opts = append(opts, chat.WithMemory(llm.NewMemory(cfg.MemoryTokens, counter, logger)))
	}
	return chat.NewSession(cfg, client, opts...)
}

func submit(ctx context.Context, session *chat.Session, prompt string, out io.Writer) error {
	reply, err := session.Submit(ctx, prompt)
	if err != nil {
		return err
	}

	if reply.Analysis != nil {
		fmt.Fprintf(out, "[%s, confidence %.2f, complexity %.2f, temperature %.2f]\n",
			reply.Analysis.Task, reply.Analysis.Confidence, reply.Analysis.Complexity, reply.Temperature)
	} else {
		fmt.Fprintf(out, "[temperature %.2f]\n", reply.Temperature)
	}
	fmt.Fprintln(out, reply.Text)
	for _, path := range reply.SavedFiles {
		fmt.Fprintf(out, "Code saved to %s\n", path)
	}
	return nil
}

func runInteractive(ctx context.Context, session *chat.Session, in io.Reader, out io.Writer) {
	fmt.Fprintf(out, "Chatting with %s. Commands: /model <name>, /models, /temp <0-1>, /auto, /analyze <prompt>, /reset, /quit\n", session.Model())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(session, line, out); quit {
				return
			}
			continue
		}
		if err := submit(ctx, session, line, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func handleCommand(session *chat.Session, line string, out io.Writer) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/models":
		for _, model := range session.Models() {
			fmt.Fprintln(out, model)
		}
	case "/model":
		if err := session.SetModel(arg); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "Model set to %s\n", arg)
	case "/temp":
		temperature, err := strconv.ParseFloat(arg, 64)
		if err == nil {
			err = session.SetTemperature(temperature)
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "Temperature fixed at %.2f\n", temperature)
	case "/auto":
		session.EnableAutoTemperature()
		fmt.Fprintln(out, "Temperature is inferred from each prompt")
	case "/analyze":
		a := session.Preview(arg)
		fmt.Fprintf(out, "Task: %s (%.2f)  Complexity: %.2f  Temperature: %.2f\n", a.Task, a.Confidence, a.Complexity, a.Temperature)
	case "/reset":
		session.Reset()
		fmt.Fprintln(out, "Conversation cleared")
	default:
		fmt.Fprintf(out, "Unknown command %s\n", cmd)
	}
	return false
}
