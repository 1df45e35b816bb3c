package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"sonoview/internal/logger"
	"sonoview/pkg/config"
	"sonoview/pkg/session"
	"sonoview/pkg/visualization"
)

const component = "main"

func main() {
	configPath := flag.String("config", "sonoview.yaml", "YAML configuration file (defaults are used when it is missing)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	outputPath := flag.String("output", "sonoview.png", "Where to write the rendered view (png, jpg or bmp)")
	seed := flag.Uint64("seed", 0, "Noise seed; 0 uses the config value, or the clock when that is 0 too")
	input := flag.String("input", "", "Image to load before running commands")
	video := flag.String("video", "", "Video to hand to the player")
	playerCmd := flag.String("player", "", "External program used to play videos (for example ffplay)")
	commands := flag.String("commands", "", "Comma separated commands, e.g. generate-image,zoom-in (name=arg passes an argument)")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save every pipeline stage when generating")
	intermediaryDir := flag.String("intermediary-dir", "", "Directory for intermediary results")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the file only when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Generator.Seed = *seed
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "intermediary-dir":
			cfg.Output.IntermediaryDir = *intermediaryDir
		case "log-level":
			cfg.Output.LogLevel = *logLevel
		}
	})

	log := logger.NewConsole(logger.ParseLevel(cfg.Output.LogLevel))

	noiseSeed := cfg.Generator.Seed
	if noiseSeed == 0 {
		noiseSeed = uint64(time.Now().UnixNano())
	}
	log.Info(component, "starting sonoview", map[string]interface{}{
		"config": *configPath,
		"seed":   noiseSeed,
	})

	var player session.Player
	if *playerCmd != "" {
		player = newExecPlayer(*playerCmd, log)
	}

	sess := session.New(cfg, rand.NewPCG(noiseSeed, noiseSeed^0x9e3779b97f4a7c15), player, log)

	steps, err := buildSteps(*input, *video, *commands)
	if err != nil {
		log.Error(component, err, nil)
		os.Exit(2)
	}

	for _, st := range steps {
		if err := sess.Dispatch(st.name, st.arg); err != nil {
			log.Error(component, err, map[string]interface{}{"command": st.name})
			os.Exit(1)
		}
	}

	state := sess.State()
	if state.Image == nil {
		log.Warning(component, "nothing to render", map[string]interface{}{"video": state.Video})
		return
	}

	view, err := sess.Render()
	if err != nil {
		log.Error(component, err, nil)
		os.Exit(1)
	}
	if err := visualization.SaveImage(view, *outputPath); err != nil {
		log.Error(component, err, nil)
		os.Exit(1)
	}

	b := view.Bounds()
	log.Info(component, "view written", map[string]interface{}{
		"path":   *outputPath,
		"source": state.Source,
		"scale":  state.Scale,
		"width":  b.Dx(),
		"height": b.Dy(),
	})
	if cfg.Output.SaveIntermediaryResults && state.Source == "generated" {
		log.Info(component, "intermediary results saved", map[string]interface{}{
			"dir": cfg.Output.IntermediaryDir,
		})
	}
}

type step struct {
	name string
	arg  string
}

// buildSteps turns the command line into an ordered list of session
// commands. Without any input or command the tool generates an image.
func buildSteps(input, video, commands string) ([]step, error) {
	var steps []step
	if input != "" {
		steps = append(steps, step{name: session.CmdUploadImage, arg: input})
	}
	if video != "" {
		steps = append(steps, step{name: session.CmdUploadVideo, arg: video})
	}

	for _, raw := range strings.Split(commands, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name, arg, _ := strings.Cut(raw, "=")
		if name == "" {
			return nil, fmt.Errorf("malformed command %q", raw)
		}
		steps = append(steps, step{name: name, arg: arg})
	}

	if len(steps) == 0 {
		steps = append(steps, step{name: session.CmdGenerateImage})
	}
	return steps, nil
}
