package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	plog "structplace.ai/internal/persistence/log"
	"structplace.ai/internal/sim/biome"
	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/placement"
	"structplace.ai/internal/sim/rules/pattern"
	"structplace.ai/internal/sim/tuning"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "locate":
		err = locateCmd(os.Args[2:])
	case "decide":
		err = decideCmd(os.Args[2:])
	case "resolve":
		err = resolveCmd(os.Args[2:])
	case "expand":
		err = expandCmd(os.Args[2:])
	case "weights":
		err = weightsCmd(os.Args[2:])
	case "specificity":
		specificityCmd(os.Args[2:])
	case "logs":
		err = logsCmd(os.Args[2:])
	case "survey":
		err = surveyCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, styleMiss.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: structctl <locate|decide|resolve|expand|weights|specificity|logs|survey> [flags]")
}

type common struct {
	config *string
	seed   *int64
	asJSON *bool
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		config: fs.String("config", "./configs/structures.yaml", "structure config path"),
		seed:   fs.Int64("seed", 0, "world seed (0 keeps the config value)"),
		asJSON: fs.Bool("json", false, "print raw json"),
	}
}

func (c common) engine() (*engine.Engine, error) {
	cfg, err := tuning.Load(*c.config)
	if err != nil {
		return nil, err
	}
	if *c.seed != 0 {
		cfg.Seed = *c.seed
	}
	return engine.Build(cfg, biome.Universe{})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func locateCmd(args []string) error {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	c := commonFlags(fs)
	target := fs.String("target", "", "structure id")
	x := fs.Int("x", 0, "start x")
	y := fs.Int("y", 64, "start y")
	z := fs.Int("z", 0, "start z")
	radius := fs.Int("radius", 0, "max search radius in chunks (0 uses the config)")
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	start := placement.Vec3{X: *x, Y: *y, Z: *z}
	res := e.Locate(e.Seed(), *target, start, *radius)
	if *c.asJSON {
		return printJSON(res)
	}
	fmt.Println(header("locate %s", *target))
	if !res.Found {
		fmt.Println(styleMiss.Render(res.Message))
		if !e.Pool().Contains(*target) {
			if sug := e.Suggest(*target, 3); len(sug) > 0 {
				fmt.Println(styleDim.Render("did you mean: " + strings.Join(sug, ", ")))
			}
		}
		return nil
	}
	fmt.Println(styleFound.Render(res.Message))
	fmt.Print(kv(
		"chunk", fmt.Sprintf("%d, %d", res.Chunk.X, res.Chunk.Z),
		"position", fmt.Sprintf("%d, %d, %d", res.Pos.X, res.Pos.Y, res.Pos.Z),
		"biome", res.Biome,
		"distance", fmt.Sprintf("%d chunks", res.Distance(start)),
		"searched", fmt.Sprintf("%d placement chunks", res.ChunksSearched),
	))
	return nil
}

func decideCmd(args []string) error {
	fs := flag.NewFlagSet("decide", flag.ExitOnError)
	c := commonFlags(fs)
	cx := fs.Int("cx", 0, "chunk x")
	cz := fs.Int("cz", 0, "chunk z")
	biomeID := fs.String("biome", "", "biome id (empty samples the world)")
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	var b biome.Entity
	if *biomeID != "" {
		if !e.Universe().Has(*biomeID) {
			return fmt.Errorf("unknown biome %q", *biomeID)
		}
		b = e.Universe().Entity(*biomeID)
	}
	d := e.Decide(e.Seed(), *cx, *cz, b)
	if *c.asJSON {
		return printJSON(d)
	}
	fmt.Println(header("chunk %d, %d", d.Chunk.X, d.Chunk.Z))
	result := styleMiss.Render("nothing")
	if d.Spawns() {
		result = styleFound.Render(d.StructureID)
	}
	fmt.Print(kv(
		"biome", d.Biome,
		"placement chunk", fmt.Sprint(d.Placement),
		"frequency", fmt.Sprintf("%.3f", d.Frequency),
		"roll", fmt.Sprintf("%.6f", d.Roll),
		"gated", fmt.Sprint(d.Gated),
		"result", result,
	))
	return nil
}

func resolveCmd(args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	r := e.Resolved()
	if *c.asJSON {
		return printJSON(r)
	}
	fmt.Println(header("placement for %s", r.StructureSet))
	for _, line := range r.Describe() {
		fmt.Println(line)
	}
	fmt.Print(warnings(e.Warnings()))
	return nil
}

func expandCmd(args []string) error {
	fs := flag.NewFlagSet("expand", flag.ExitOnError)
	c := commonFlags(fs)
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	out := map[string][]string{}
	for _, p := range fs.Args() {
		out[p] = e.Expander().Biomes(p)
	}
	if *c.asJSON {
		return printJSON(out)
	}
	for _, p := range fs.Args() {
		fmt.Println(header("%s (specificity %d)", p, pattern.Specificity(p)))
		if !pattern.Valid(p) {
			fmt.Println(styleMiss.Render("malformed pattern, matches nothing"))
			continue
		}
		if len(out[p]) == 0 {
			fmt.Println(styleDim.Render("no biomes"))
		}
		for _, id := range out[p] {
			fmt.Println(id)
		}
	}
	return nil
}

func weightsCmd(args []string) error {
	fs := flag.NewFlagSet("weights", flag.ExitOnError)
	c := commonFlags(fs)
	biomeID := fs.String("biome", "", "biome id")
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	if !e.Universe().Has(*biomeID) {
		return fmt.Errorf("unknown biome %q", *biomeID)
	}
	b := e.Universe().Entity(*biomeID)
	ws := e.Weights(b)
	freq := e.Lottery().FrequencyFor(b)
	if *c.asJSON {
		out := map[string]any{"biome": b.ID, "frequency": freq, "weights": map[string]int{}}
		for i, s := range e.Pool() {
			out["weights"].(map[string]int)[s.ID] = ws[i]
		}
		return printJSON(out)
	}
	fmt.Println(header("%s  frequency %.3f", b.ID, freq))
	total := 0
	for _, w := range ws {
		total += w
	}
	var pairs []string
	for i, s := range e.Pool() {
		name := s.ID
		if name == "" {
			name = "(empty)"
		}
		share := "-"
		if total > 0 && ws[i] > 0 {
			share = fmt.Sprintf("%d  (%.1f%%)", ws[i], 100*float64(ws[i])/float64(total))
		}
		pairs = append(pairs, name, share)
	}
	fmt.Print(kv(pairs...))
	return nil
}

func specificityCmd(args []string) {
	ps := append([]string(nil), args...)
	sort.SliceStable(ps, func(i, j int) bool { return pattern.Specificity(ps[i]) > pattern.Specificity(ps[j]) })
	for _, p := range ps {
		fmt.Printf("%4d  %s\n", pattern.Specificity(p), p)
	}
}

func logsCmd(args []string) error {
	fs := flag.NewFlagSet("logs", flag.ExitOnError)
	limit := fs.Int("limit", 0, "max lines per file (0 = all)")
	_ = fs.Parse(args)

	for _, path := range fs.Args() {
		n := 0
		err := plog.ReadJSONL(path, func(line []byte) error {
			if *limit > 0 && n >= *limit {
				return nil
			}
			n++
			fmt.Println(string(line))
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
