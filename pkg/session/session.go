// Package session holds the viewer state that a front end renders and the
// named commands that change it.
package session

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strings"

	"sonoview/internal/logger"
	"sonoview/pkg/config"
	"sonoview/pkg/ultrasound"
	"sonoview/pkg/visualization"
)

const component = "session"

// Command names understood by Dispatch.
const (
	CmdUploadImage   = "upload-image"
	CmdZoomIn        = "zoom-in"
	CmdZoomOut       = "zoom-out"
	CmdGenerateImage = "generate-image"
	CmdUploadVideo   = "upload-video"
)

var (
	// ErrUnknownCommand is returned by Dispatch for unregistered names.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNoImage is returned by Render before any image was loaded.
	ErrNoImage = errors.New("no image loaded")

	// ErrUnsupportedFormat is returned for files of an unexpected type.
	ErrUnsupportedFormat = visualization.ErrUnsupportedFormat
)

// VideoExtensions lists the file types accepted by upload-video.
var VideoExtensions = []string{".mp4", ".avi", ".mkv", ".mov"}

// State is everything a front end needs to draw the viewer.
type State struct {
	// Image is the picture on display, nil until one is loaded or generated
	Image image.Image

	// Scale is the zoom factor applied when rendering
	Scale float64

	// Source describes where Image came from: a file path or "generated"
	Source string

	// Video is the path of the last video handed to the player
	Video string
}

// Player plays video files. Decoding and presentation belong to the
// surrounding media framework.
type Player interface {
	Play(path string) error
}

// Command mutates a session. arg carries the command's argument, such as a
// file path, and may be empty.
type Command func(s *Session, arg string) error

// Session owns the viewer state and dispatches commands against it.
type Session struct {
	cfg    *config.Config
	src    rand.Source
	player Player
	log    logger.Logger

	state    State
	commands map[string]Command
}

// New creates a session with the default command table. src feeds the
// ultrasound generator; player receives uploaded videos and may be nil, in
// which case videos are only recorded in the state.
func New(cfg *config.Config, src rand.Source, player Player, log logger.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Session{
		cfg:    cfg,
		src:    src,
		player: player,
		log:    log,
		state:  State{Scale: 1.0},
	}
	s.commands = map[string]Command{
		CmdUploadImage:   uploadImage,
		CmdZoomIn:        zoomIn,
		CmdZoomOut:       zoomOut,
		CmdGenerateImage: generateImage,
		CmdUploadVideo:   uploadVideo,
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	return s.state
}

// Register adds or replaces a command.
func (s *Session) Register(name string, cmd Command) {
	s.commands[name] = cmd
}

// Commands lists the registered command names in sorted order.
func (s *Session) Commands() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the named command.
func (s *Session) Dispatch(name, arg string) error {
	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	s.log.Debug(component, "dispatching command", map[string]interface{}{"command": name, "arg": arg})
	if err := cmd(s, arg); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Render returns the current image scaled by the zoom factor.
func (s *Session) Render() (image.Image, error) {
	if s.state.Image == nil {
		return nil, ErrNoImage
	}
	return visualization.Scale(s.state.Image, s.state.Scale)
}

// show replaces the displayed image and resets the zoom.
func (s *Session) show(img image.Image, source string) {
	s.state = State{
		Image:  img,
		Scale:  1.0,
		Source: source,
		Video:  s.state.Video,
	}
}

func uploadImage(s *Session, path string) error {
	// An empty path means the file picker was cancelled.
	if path == "" {
		return nil
	}

	img, err := visualization.LoadImage(path)
	if err != nil {
		return err
	}
	s.show(img, path)

	b := img.Bounds()
	s.log.Info(component, "image loaded", map[string]interface{}{
		"path":   path,
		"width":  b.Dx(),
		"height": b.Dy(),
	})
	return nil
}

func zoomIn(s *Session, _ string) error {
	if s.state.Image == nil {
		return nil
	}
	s.state.Scale += s.cfg.Display.ZoomStep
	s.log.Debug(component, "zoom in", map[string]interface{}{"scale": s.state.Scale})
	return nil
}

func zoomOut(s *Session, _ string) error {
	if s.state.Image == nil {
		return nil
	}
	s.state.Scale -= s.cfg.Display.ZoomStep
	if s.state.Scale < s.cfg.Display.MinScale {
		s.state.Scale = s.cfg.Display.MinScale
	}
	s.log.Debug(component, "zoom out", map[string]interface{}{"scale": s.state.Scale})
	return nil
}

func generateImage(s *Session, _ string) error {
	params := ultrasound.ParamsFromConfig(s.cfg)
	img, err := ultrasound.NewProcessor(&params, s.src, s.log).Process()
	if err != nil {
		return err
	}
	s.show(img.Gray(), "generated")
	return nil
}

func uploadVideo(s *Session, path string) error {
	if path == "" {
		return nil
	}
	if !isVideoFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if s.player != nil {
		if err := s.player.Play(path); err != nil {
			return fmt.Errorf("failed to play %s: %w", path, err)
		}
	}
	s.state.Video = path
	s.log.Info(component, "video queued", map[string]interface{}{"path": path})
	return nil
}

func isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range VideoExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
