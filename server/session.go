package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cristianvogel/elementary/engine"
	"github.com/cristianvogel/elementary/graph"
	"github.com/cristianvogel/elementary/internal/wav"
	"github.com/cristianvogel/elementary/js"
	"github.com/cristianvogel/elementary/manifest"
	"github.com/cristianvogel/elementary/wire"
)

// session is one WebSocket connection. Directives arrive as text or
// binary messages; event batches arrive from the server's drain loop.
// A write mutex serializes the broadcaster and error replies onto the
// connection.
type session struct {
	id   string
	srv  *Server
	conn *websocket.Conn

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		srv:  srv,
		conn: conn,
	}
}

// run reads directives until the connection drops.
func (s *session) run() {
	defer s.close()

	for {
		msgType, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.TextMessage:
			err = s.apply(raw)
		case websocket.BinaryMessage:
			err = s.applyBinary(raw)
		default:
			continue
		}
		if err != nil {
			log.Warningf("session %s directive rejected: %v", s.id, err)
			s.sendError(err)
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
}

// apply validates, decodes, and renders one directive message.
func (s *session) apply(raw []byte) error {
	if err := s.srv.validator.validate(raw); err != nil {
		return err
	}

	payload, err := js.ParseJSON(string(raw))
	if err != nil {
		return fmt.Errorf("server: parsing directive: %w", err)
	}

	d, err := buildDirective(s.srv.man, payload)
	if err != nil {
		return err
	}
	return s.srv.worker.Render(d)
}

// applyBinary renders a directive that arrived as CBOR. Binary
// directives carry their resources inline, so no manifest resolution
// happens here.
func (s *session) applyBinary(raw []byte) error {
	d, err := wire.UnmarshalDirective(raw)
	if err != nil {
		return err
	}
	return s.srv.worker.Render(d)
}

func (s *session) writeText(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (s *session) sendError(err error) {
	o := js.NewObject()
	o.Set("type", js.String("error"))
	o.Set("message", js.String(err.Error()))

	text, serr := js.SerializeJSON(js.ObjectValue(o))
	if serr != nil {
		return
	}
	if werr := s.writeText(text); werr != nil {
		s.close()
	}
}

// buildDirective decodes a validated directive payload. Resource values
// name entries in the manifest's resource table or point at WAV files
// relative to the manifest directory.
func buildDirective(man *manifest.Manifest, payload js.Value) (engine.Directive, error) {
	var d engine.Directive

	if gv, ok := payload.Object().Get("graph"); ok {
		for _, elem := range gv.Array() {
			n, err := graph.FromValue(elem)
			if err != nil {
				return engine.Directive{}, err
			}
			d.Graph = append(d.Graph, n)
		}
	}

	rv, ok := payload.Object().Get("resources")
	if !ok {
		return d, nil
	}

	d.Resources = make(map[string]*engine.AudioBuffer)
	var firstErr error
	rv.Object().Each(func(name string, pv js.Value) bool {
		buf, err := loadResource(man, pv.Str())
		if err != nil {
			firstErr = fmt.Errorf("server: resource %s: %w", name, err)
			return false
		}
		d.Resources[name] = buf
		return true
	})
	if firstErr != nil {
		return engine.Directive{}, firstErr
	}
	return d, nil
}

func loadResource(man *manifest.Manifest, ref string) (*engine.AudioBuffer, error) {
	path := ref
	if resolved, ok := man.ResourcePath(ref); ok {
		path = resolved
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(man.Dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := wav.Decode(data)
	if err != nil {
		return nil, err
	}
	if decoded.SampleRate != int(man.Audio.SampleRate) {
		log.Warningf("resource %s sample rate %d differs from engine rate %g",
			ref, decoded.SampleRate, man.Audio.SampleRate)
	}
	return &engine.AudioBuffer{
		Data:     decoded.Data,
		Channels: decoded.Channels,
		Frames:   decoded.Frames,
	}, nil
}
