// Package cli implements the interactive terminal practice mode: browse a
// category's flashcards, then take the multiple-choice quiz, with colorized
// feedback.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/lexikid/lexikid/internal/gateway"
	"github.com/lexikid/lexikid/internal/history"
	"github.com/lexikid/lexikid/internal/lesson"
	"github.com/lexikid/lexikid/internal/scenario"
)

// errEnd signals that the user chose to quit the practice loop.
var errEnd = errors.New("end of practice")

// vocabularyPollInterval is how often the loop checks whether the word list
// has arrived while the loading screen is up.
const vocabularyPollInterval = 50 * time.Millisecond

// PracticeOptions configures a PracticeCLI. Zero values fall back to stdin,
// stdout, and the default word count.
type PracticeOptions struct {
	Input       io.Reader
	Output      io.Writer
	WordCount   int
	HistoryRepo *history.Repository
	Logger      *slog.Logger
}

// PracticeCLI manages the interactive flashcard and quiz session for one
// terminal user.
type PracticeCLI struct {
	catalog      *scenario.Catalog
	controller   *lesson.Controller
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	green        *color.Color
	red          *color.Color
}

// NewPracticeCLI creates a new practice CLI over the given gateway client.
func NewPracticeCLI(catalog *scenario.Catalog, client gateway.Client, opts PracticeOptions) *PracticeCLI {
	input := opts.Input
	if input == nil {
		input = os.Stdin
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	controllerOptions := []lesson.Option{
		lesson.WithLogger(logger),
	}
	if opts.WordCount > 0 {
		controllerOptions = append(controllerOptions, lesson.WithWordCount(opts.WordCount))
	}
	if opts.HistoryRepo != nil {
		repo := opts.HistoryRepo
		controllerOptions = append(controllerOptions, lesson.WithQuizFinishedHook(func(category string, score, total int) {
			if err := repo.Record(&history.Result{
				SessionID: "practice",
				Category:  category,
				Score:     score,
				Total:     total,
			}); err != nil {
				logger.Error("failed to record quiz result", "category", category, "error", err)
			}
		}))
	}

	return &PracticeCLI{
		catalog:      catalog,
		controller:   lesson.NewController(client, controllerOptions...),
		stdinReader:  bufio.NewReader(input),
		stdoutWriter: output,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
	}
}

// Run loops practice sessions until the user quits or an interrupt arrives.
func (cli *PracticeCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Session runs one full category: pick, browse flashcards, take the quiz.
func (cli *PracticeCLI) Session(ctx context.Context) error {
	category, err := cli.pickCategory()
	if err != nil {
		return err
	}

	if err := cli.controller.SelectCategory(ctx, category.ID); err != nil {
		return fmt.Errorf("controller.SelectCategory(%s) > %w", category.ID, err)
	}
	fmt.Fprintf(cli.stdoutWriter, "Fetching words for %s %s...\n", category.Emoji, cli.bold.Sprint(category.Name))

	state, err := cli.waitForVocabulary(ctx)
	if err != nil {
		return err
	}
	if state.Screen != lesson.ScreenLearn {
		// Fetch failed; the controller holds a kid-friendly message.
		fmt.Fprintln(cli.stdoutWriter, cli.red.Sprint(state.ErrorMessage))
		return nil
	}

	if err := cli.browseFlashcards(state); err != nil {
		return err
	}
	return cli.runQuiz()
}

func (cli *PracticeCLI) pickCategory() (scenario.Category, error) {
	fmt.Fprintln(cli.stdoutWriter)
	fmt.Fprintln(cli.stdoutWriter, cli.bold.Sprint("Pick a category:"))
	for i, category := range cli.catalog.Categories {
		fmt.Fprintf(cli.stdoutWriter, "  %d. %s %s (%s)\n", i+1, category.Emoji, category.Name, category.Chinese)
	}
	fmt.Fprint(cli.stdoutWriter, "Enter a number, or q to quit: ")

	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return scenario.Category{}, errEnd
		}
		return scenario.Category{}, fmt.Errorf("error reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "q" {
		return scenario.Category{}, errEnd
	}

	index, err := strconv.Atoi(line)
	if err != nil || index < 1 || index > len(cli.catalog.Categories) {
		fmt.Fprintln(cli.stdoutWriter, "That's not one of the numbers. Try again!")
		return cli.pickCategory()
	}
	return cli.catalog.Categories[index-1], nil
}

// waitForVocabulary polls until the loading screen resolves either way.
func (cli *PracticeCLI) waitForVocabulary(ctx context.Context) (lesson.State, error) {
	for {
		state := cli.controller.Snapshot()
		if state.Screen != lesson.ScreenLoading {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return lesson.State{}, ctx.Err()
		case <-time.After(vocabularyPollInterval):
		}
	}
}

func (cli *PracticeCLI) browseFlashcards(state lesson.State) error {
	fmt.Fprintln(cli.stdoutWriter)
	fmt.Fprintf(cli.stdoutWriter, "%d words. Press Enter for the next card.\n", len(state.VocabItems))

	for i, item := range state.VocabItems {
		fmt.Fprintf(cli.stdoutWriter, "  %s  %s (%s)",
			item.Emoji,
			cli.bold.Sprint(item.English),
			cli.italic.Sprint(item.Chinese),
		)
		if _, err := cli.stdinReader.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return errEnd
			}
			return fmt.Errorf("error reading input: %w", err)
		}
		if i < len(state.VocabItems)-1 {
			if err := cli.controller.NextCard(); err != nil {
				return fmt.Errorf("controller.NextCard() > %w", err)
			}
		}
	}
	return nil
}

func (cli *PracticeCLI) runQuiz() error {
	if err := cli.controller.SwitchToQuiz(); err != nil {
		return fmt.Errorf("controller.SwitchToQuiz() > %w", err)
	}

	fmt.Fprintln(cli.stdoutWriter)
	fmt.Fprintln(cli.stdoutWriter, cli.bold.Sprint("Quiz time!"))

	for {
		state := cli.controller.Snapshot()
		if state.Finished || state.CurrentIndex >= len(state.QuizItems) {
			break
		}
		item := state.QuizItems[state.CurrentIndex]

		fmt.Fprintf(cli.stdoutWriter, "\n%s  Which word is this? (%s)\n", item.Emoji, cli.italic.Sprint(item.Chinese))
		for i, option := range item.Options {
			fmt.Fprintf(cli.stdoutWriter, "  %d. %s\n", i+1, option)
		}

		option, err := cli.pickOption(item.Options)
		if err != nil {
			return err
		}

		correct, err := cli.controller.SubmitAnswer(option)
		if err != nil {
			return fmt.Errorf("controller.SubmitAnswer(%s) > %w", option, err)
		}
		if correct {
			fmt.Fprintf(cli.stdoutWriter, "✅ %s\n", cli.green.Sprintf("It's correct! %s means %s", item.English, item.Chinese))
		} else {
			fmt.Fprintf(cli.stdoutWriter, "❌ %s\n", cli.red.Sprintf("Not quite. The answer is %s", item.English))
		}

		if err := cli.controller.Advance(); err != nil {
			return fmt.Errorf("controller.Advance() > %w", err)
		}
	}

	final := cli.controller.Snapshot()
	fmt.Fprintln(cli.stdoutWriter)
	fmt.Fprintf(cli.stdoutWriter, "You got %s out of %d!\n",
		cli.bold.Sprintf("%d", final.Score),
		len(final.QuizItems),
	)
	cli.controller.GoHome()
	return nil
}

func (cli *PracticeCLI) pickOption(options []string) (string, error) {
	fmt.Fprint(cli.stdoutWriter, "Your answer: ")
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errEnd
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	line = strings.TrimSpace(line)

	index, err := strconv.Atoi(line)
	if err != nil || index < 1 || index > len(options) {
		fmt.Fprintln(cli.stdoutWriter, "Pick one of the numbers above.")
		return cli.pickOption(options)
	}
	return options[index-1], nil
}
