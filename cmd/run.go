/*
Copyright © 2025 korvits

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	dispatch "github.com/markuskont/go-dispatch"
	log "github.com/prometheus/common/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	engine "github.com/korvits/go-event-rule-engine"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match detection rules on an event stream",
	Long: `Run command reads newline-delimited JSON events from stdin or a file,
thus any stream could be piped into the command. For example:

	zcat ~/Logs/windows.json.gz | go-event-rule-engine run --rules-dir ./rules
	`,
	Run: run,
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Match is emitted to the result sink once per positive (rule, event) pair
type Match struct {
	Timestamp time.Time         `json:"timestamp"`
	Rule      engine.Result     `json:"rule"`
	Event     engine.DynamicMap `json:"event"`
}

func copyBytes(in []byte) []byte {
	tx := make([]byte, len(in))
	copy(tx, in)
	return tx
}

func scanLines(input io.Reader, ctx context.Context) <-chan []byte {
	tx := make(chan []byte, 1)
	go func(ctx context.Context) {
		defer close(tx)
		scanner := bufio.NewScanner(input)
	loop:
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				break loop
			case tx <- copyBytes(scanner.Bytes()):
			}
		}
		if err := scanner.Err(); err != nil {
			logrus.Fatal(err)
		}
	}(ctx)
	return tx
}

func open(path string) (io.ReadCloser, error) {
	var (
		file *os.File
		err  error
	)
	if file, err = os.Open(path); err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, "gz") {
		return gzip.NewReader(file)
	}
	return file, nil
}

// sink serializes match output from concurrent workers
type sink struct {
	sync.Mutex
	out io.Writer

	events, matches int64
}

func (s *sink) emit(m Match) {
	b, err := json.Marshal(m)
	if err != nil {
		logrus.Error(err)
		return
	}
	s.Lock()
	s.matches++
	fmt.Fprintln(s.out, string(b))
	s.Unlock()
}

func (s *sink) count(n int64) {
	s.Lock()
	s.events += n
	s.Unlock()
}

func (s *sink) stats() (int64, int64) {
	s.Lock()
	defer s.Unlock()
	return s.events, s.matches
}

func run(cmd *cobra.Command, args []string) {
	var input io.ReadCloser
	var err error
	if infile := viper.GetString("run.input"); infile != "" {
		input, err = open(infile)
		if err != nil {
			log.Fatal(err)
		}
		defer input.Close()
	} else {
		input = os.Stdin
	}

	results := &sink{out: os.Stdout}
	if outfile := viper.GetString("run.output"); outfile != "" {
		handle, err := os.Create(outfile)
		if err != nil {
			logrus.Fatal(err)
		}
		defer handle.Close()
		results.out = handle
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lines := scanLines(input, ctx)

	go func() {
		tick := time.NewTicker(viper.GetDuration("run.stats.interval"))
		defer tick.Stop()
		start := time.Now()
		for {
			select {
			case <-tick.C:
				events, matches := results.stats()
				logrus.Tracef("scanner got %d events %d matches %.2f eps",
					events, matches, float64(events)/time.Since(start).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	workers := viper.GetInt("run.workers")
	if err := dispatch.Run(dispatch.Config{
		Async:   false,
		Workers: workers,
		FeederFunc: func(tasks chan<- dispatch.Task, stop <-chan struct{}) {
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				tasks <- func(id, count int, ctx context.Context) error {
					defer wg.Done()
					// each worker compiles its own ruleset, trees are never shared
					// between goroutines even though a validated tree would be safe to share
					ruleset, err := engine.NewRuleset(engine.Config{
						Directory:      viper.GetStringSlice("rules.dir"),
						FieldAliasFile: viper.GetString("rules.field.aliases"),
					})
					if err != nil {
						return err
					}
					logrus.Debugf("Worker %d found %d files, %d ok, %d failed, %d unsupported",
						id, ruleset.Total, ruleset.Ok, ruleset.Failed, ruleset.Unsupported)

					var seen int64
					for l := range lines {
						var e engine.DynamicMap
						if err := json.Unmarshal(l, &e); err != nil {
							logrus.Error(err)
							continue
						}
						seen++
						if res, match := ruleset.EvalAll(e); match {
							ts := time.Now().UTC()
							for _, r := range res {
								results.emit(Match{Timestamp: ts, Rule: r, Event: e})
							}
						}
					}
					results.count(seen)
					return nil
				}
			}
			wg.Wait()
		},
		ErrFunc: func(err error) bool {
			logrus.Error(err)
			return true
		},
	}); err != nil {
		logrus.Fatal(err)
	}
	events, matches := results.stats()
	logrus.Infof("Done. %d events, %d matches.", events, matches)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.PersistentFlags().Int("workers", 4,
		`Number of workers for rule matching.`)
	viper.BindPFlag("run.workers",
		runCmd.PersistentFlags().Lookup("workers"))

	runCmd.PersistentFlags().String("input", "",
		`Input log file. Gzip is handled by file suffix. Defaults to stdin.`)
	viper.BindPFlag("run.input",
		runCmd.PersistentFlags().Lookup("input"))

	runCmd.PersistentFlags().String("output", "",
		`Output file for match results. Defaults to stdout.`)
	viper.BindPFlag("run.output",
		runCmd.PersistentFlags().Lookup("output"))

	runCmd.PersistentFlags().Duration("stats-interval", 1*time.Second,
		`Interval between stats logging.`)
	viper.BindPFlag("run.stats.interval",
		runCmd.PersistentFlags().Lookup("stats-interval"))
}
