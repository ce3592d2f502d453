package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/config"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/experiment"
	"github.com/san-kum/kinelab/internal/export"
	"github.com/san-kum/kinelab/internal/logging"
	"github.com/san-kum/kinelab/internal/optim"
	"github.com/san-kum/kinelab/internal/scenes"
	"github.com/san-kum/kinelab/internal/session"
	"github.com/san-kum/kinelab/internal/storage"
	"github.com/san-kum/kinelab/internal/stream"
	"github.com/san-kum/kinelab/internal/tui"
	"github.com/san-kum/kinelab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	sets       []string
	speed      float64
	frameRate  int
	until      float64
	watch      bool
	noSave     bool
	jsonOut    string
	quantities []string
	svgOut     string
	outFile    string
	frameAt    float64
	grid       []string
	metricName string
	addr       string
	theme      string

	log *zap.Logger
	reg = experiment.NewRegistry()
)

// main wires the cobra command tree. With no subcommand it opens the
// interactive scene menu.
func main() {
	log = logging.Must()
	defer log.Sync()

	rootCmd := &cobra.Command{
		Use:           "kinelab",
		Short:         "kinematics demonstrations: elevators, drops, bounces, collisions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, "")
			if err != nil {
				return err
			}
			viz.SetTheme(theme)
			return viz.RunInteractive(reg, cfg.LoopOptions(), cfg.FPS)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run storage directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "colour theme: "+strings.Join(viz.ThemeNames(), ", "))

	sceneFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&preset, "preset", "", "use a preset for the scene")
		cmd.Flags().StringArrayVar(&sets, "set", nil, "slider value as name=value (repeatable)")
		cmd.Flags().Float64Var(&speed, "speed", 0, "playback speed (default from config)")
		cmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (default from config)")
	}

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and record it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().Float64Var(&until, "until", 0, "stop at this simulation time (0 runs to the end)")
	runCmd.Flags().BoolVar(&watch, "watch", false, "play in real time with a plain terminal renderer")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also write the run as JSON to this file")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "play a scene in the interactive terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list scenes and their sliders",
		RunE:  listScenes,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot quantities of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVarP(&quantities, "quantity", "q", []string{"gforce", "velocity"}, "quantities to plot")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the plot as SVG instead")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.json)")

	frameCmd := &cobra.Command{
		Use:   "frame [scene]",
		Short: "draw one frame of a scene as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportFrame,
	}
	sceneFlags(frameCmd)
	frameCmd.Flags().Float64Var(&frameAt, "at", 0, "simulation time of the frame")
	frameCmd.Flags().StringVarP(&outFile, "out", "o", "frame.svg", "output file")

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, name := range presets {
				p := config.GetPreset(args[0], name)
				fmt.Printf("  %-10s %s\n", name, scenes.FormatParams(p.Params))
			}
			return nil
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run a scene over a parameter grid",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScene,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&grid, "grid", nil, "grid axis as name=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "", "rank points by this metric")

	serveCmd := &cobra.Command{
		Use:   "serve [scene]",
		Short: "stream a live scene over websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serve,
	}
	sceneFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "print the JSON schema of the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.SchemaJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, scenesCmd, listCmd, plotCmd, exportCSVCmd,
		exportJSONCmd, frameCmd, presetsCmd, sweepCmd, serveCmd, schemaCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		log.Sync()
		os.Exit(1)
	}
}

// resolveConfig layers, lowest first: defaults or --config, --preset, the
// scene argument, then individual flags and --set values.
func resolveConfig(cmd *cobra.Command, scene string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if scene != "" {
		cfg.Scene = scene
	}
	if preset != "" {
		p := config.GetPreset(cfg.Scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (try: %s)", preset, cfg.Scene,
				strings.Join(config.ListPresets(cfg.Scene), ", "))
		}
		cfg = cfg.WithParams(p.Params)
		if p.Speed != config.DefaultSpeed {
			cfg.Speed = p.Speed
		}
	}
	if f := cmd.Flags().Lookup("speed"); f != nil && f.Changed {
		cfg.Speed = speed
	}
	if f := cmd.Flags().Lookup("fps"); f != nil && f.Changed {
		cfg.FPS = frameRate
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	extra := make(map[string]float64, len(sets))
	for _, kv := range sets {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("--set %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("--set %s: %w", name, err)
		}
		extra[strings.TrimSpace(name)] = v
	}
	cfg = cfg.WithParams(extra)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func sceneArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// buildScene looks the scene up and applies the config's sliders.
func buildScene(cfg *config.Config) (dynamo.Scene, error) {
	scene, err := reg.GetScene(cfg.Scene)
	if err != nil {
		return nil, fmt.Errorf("%w (try: %s)", err, strings.Join(reg.ListScenes(), ", "))
	}
	names := make([]string, 0, len(cfg.Params))
	for name := range cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := scene.SetParam(name, cfg.Params[name]); err != nil {
			return nil, err
		}
	}
	return scene, nil
}

func loopOptions(cfg *config.Config) animation.Options {
	opts := cfg.LoopOptions()
	opts.Logger = log
	return opts
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, sceneArg(args))
	if err != nil {
		return err
	}
	if watch {
		return watchScene(cfg)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s...\n", cfg.Scene)
	start := time.Now()
	result, err := experiment.RunScene(ctx, reg, experiment.Config{
		Scene:  cfg.Scene,
		Params: cfg.Params,
		FPS:    cfg.FPS,
		Speed:  cfg.Speed,
		Until:  until,
		Logger: log,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Scene:     result.Scene,
		Timestamp: time.Now(),
		FPS:       cfg.FPS,
		Speed:     cfg.Speed,
		Duration:  result.Duration,
		Frames:    result.Frames,
		Params:    result.Params,
		Metrics:   result.Metrics,
	}
	if !noSave {
		st := storage.New(cfg.DataDir)
		id, err := st.Save(meta, result.Snapshots)
		if err != nil {
			return err
		}
		meta.ID = id
		log.Info("run saved", zap.String("id", id), zap.String("dir", cfg.DataDir))
	}
	if jsonOut != "" {
		if err := storage.ExportJSONFile(jsonOut, meta, result.Snapshots); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	if meta.ID != "" {
		fmt.Printf("run id: %s\n", meta.ID)
	}
	fmt.Printf("params: %s\n", scenes.FormatParams(result.Params))
	fmt.Printf("simulated: %.3fs in %d frames\n", result.Duration, result.Frames)
	if last := result.Snapshots; len(last) > 0 {
		fmt.Printf("final phase: %s\n", last[len(last)-1].Phase)
	}
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

// watchScene plays the scene against the wall clock, drawing plain ANSI
// frames, and returns when the loop reaches the end.
func watchScene(cfg *config.Config) error {
	scene, err := buildScene(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	renderer := tui.NewLiveRenderer(os.Stdout, cfg.FPS)
	renderer.Start()
	defer renderer.Stop()

	queue := animation.NewFrameQueue()
	sess := session.New(scene, queue, loopOptions(cfg), renderer.Render)
	if until > 0 {
		sess.Loop().SetMaxTime(until)
	}
	sess.Loop().Subscribe(func(st animation.Status) {
		if !st.Running && st.Time >= sess.Loop().MaxTime() {
			cancel()
		}
	})
	sess.Play()

	err = animation.Realtime(ctx, queue, cfg.FPS, nil, nil)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, sceneArg(args))
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)
	return viz.RunLive(scene, cfg.LoopOptions(), cfg.FPS)
}

func listScenes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tDURATION\tSLIDERS")
	for _, name := range reg.ListScenes() {
		scene, err := reg.GetScene(name)
		if err != nil {
			return err
		}
		var sliders []string
		if d, ok := scene.(scenes.Describer); ok {
			for _, s := range d.Specs() {
				sliders = append(sliders, fmt.Sprintf("%s[%g..%g]", s.Name, s.Min, s.Max))
			}
		}
		fmt.Fprintf(w, "%s\t%.2fs\t%s\n", name, scene.Duration(), strings.Join(sliders, " "))
	}
	return w.Flush()
}

func store() *storage.Store {
	dir := dataDir
	if dir == "" {
		dir = config.DefaultDataDir
		if configFile != "" {
			if cfg, err := config.Load(configFile); err == nil {
				dir = cfg.DataDir
			}
		}
	}
	return storage.New(dir)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store().List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tFRAMES\tSPEED\tPARAMS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%gx\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Frames,
			run.Speed,
			scenes.FormatParams(run.Params),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store()
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if svgOut != "" {
		series := make([][]export.Point, 0, len(quantities))
		for _, q := range quantities {
			series = append(series, export.Series(snaps, q))
		}
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.PathsSVG(f, series, 800, 400); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(snaps))
	for _, q := range quantities {
		pts := export.Series(snaps, q)
		if len(pts) < 2 {
			fmt.Printf("%s: not recorded\n\n", q)
			continue
		}
		data := make([]float64, len(pts))
		for i, p := range pts {
			data[i] = p.Y
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(q),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	snaps, err := store().LoadTrace(args[0])
	if err != nil {
		return err
	}
	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return storage.WriteTrace(out, snaps)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store()
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	snaps, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = args[0] + ".json"
	}
	if err := storage.ExportJSONFile(path, *meta, snaps); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportFrame(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, sceneArg(args))
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg)
	if err != nil {
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	canvas := viz.Frame(scene, dynamo.Clamp(frameAt, 0, scene.Duration()), 60, 20)
	if err := export.CanvasSVG(f, canvas, 4); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s at t=%.2fs, %s)\n", outFile, scene.Name(), scene.Snapshot().Time, scene.Snapshot().Phase)
	return nil
}

// parseAxis reads name=lo:hi:n.
func parseAxis(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("--grid %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("--grid %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("--grid %s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("--grid %s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("--grid %s: bad point count %q", name, parts[2])
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("sweep needs at least one --grid axis")
	}
	var names []string
	var ranges [][]float64
	for _, g := range grid {
		name, values, err := parseAxis(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		scene, err := reg.GetScene(cfg.Scene)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{
			Scene:  cfg.Scene,
			Params: cfg.WithParams(params).Params,
			FPS:    cfg.FPS,
			Speed:  cfg.Speed,
		})
		if err := exp.Setup(scene, reg.DefaultMetrics(cfg.Scene)); err != nil {
			return nil, err
		}
		return exp, nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch(names, ranges)
	log.Info("sweep started", zap.String("scene", cfg.Scene), zap.Int("points", len(gs.Points())))
	points, err := gs.Sweep(ctx, build)
	if err != nil {
		return err
	}
	if metricName != "" {
		points = optim.Rank(points, metricName)
	}

	var metricNames []string
	for _, p := range points {
		if p.Err == nil {
			for name := range p.Metrics {
				metricNames = append(metricNames, name)
			}
			break
		}
	}
	sort.Strings(metricNames)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.Join(names, "\t"), strings.Join(metricNames, "\t"))
	for _, p := range points {
		row := make([]string, 0, len(names)+len(metricNames))
		for _, n := range names {
			row = append(row, strconv.FormatFloat(p.Params[n], 'g', 6, 64))
		}
		if p.Err != nil {
			row = append(row, "error: "+p.Err.Error())
		} else {
			for _, m := range metricNames {
				row = append(row, strconv.FormatFloat(p.Metrics[m], 'f', 4, 64))
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, sceneArg(args))
	if err != nil {
		return err
	}
	scene, err := buildScene(cfg)
	if err != nil {
		return err
	}
	// a long-running server logs JSON lines
	if jl, err := logging.NewJSON(); err == nil {
		log = jl
		defer log.Sync()
	}
	ctx, cancel := signalContext()
	defer cancel()

	srv := stream.NewServer(reg, scene, stream.Config{
		FPS:     cfg.FPS,
		Options: cfg.LoopOptions(),
		Logger:  log,
	})
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 2)
	go func() { errc <- srv.Run(ctx) }()
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case <-ctx.Done():
	case err = <-errc:
		cancel()
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if serr := httpSrv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	log.Info("server stopped")
	return err
}
