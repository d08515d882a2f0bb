// Command mixerdemo wires a Mixer, a Sink, the control HTTP API, and a
// couple of preloaded WAV sounds into one runnable process, mirroring the
// teacher's cmd/server/main.go: load .env, build the dependency graph, start
// the control server in a goroutine, and block on an OS signal for a clean
// shutdown.
package main

import (
	"encoding/binary"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gomixer/internal/config"
	"gomixer/internal/control"
	"gomixer/internal/decode"
	"gomixer/internal/mixer"
	"gomixer/internal/sink"
)

func main() {
	config.LoadDotEnv(".env")

	log.Println("================================")
	log.Println(" GOMIXER DEMO")
	log.Println("================================")

	mixerCfg := config.MixerFromEnv()
	log.Printf("mixer: %d channels @ %.0f Hz", mixerCfg.NumChannels, mixerCfg.SampleRate)

	opts := mixer.DefaultOptions()
	opts.SampleRate = mixerCfg.SampleRate
	opts.NumChannels = mixerCfg.NumChannels
	opts.IsLoopback = mixerCfg.IsLoopback

	var backend mixer.Sink
	if !mixerCfg.IsLoopback {
		backend = sink.NewOtoSink()
	}

	m := mixer.New(opts, backend)
	if m.IsErrored() {
		log.Fatalf("mixer failed to start: %s", m.LastErrorString())
	}
	defer m.Close()

	sounds := control.NewSoundRegistry()
	registerBuiltinTone(m, sounds, "beep", 440, 0.3, mixerCfg.SampleRate)
	registerBuiltinTone(m, sounds, "blip", 880, 0.12, mixerCfg.SampleRate)

	router := control.NewRouter(control.RouterConfig{Mixer: m, Sounds: sounds})

	addr := getEnvWithDefault("GOMIXER_HTTP_ADDR", ":8090")
	go func() {
		log.Printf("control API on http://localhost%s", addr)
		log.Printf("  POST /api/play           {\"name\":\"beep\"}")
		log.Printf("  POST /api/stop           {\"channel\":0}")
		log.Printf("  POST /api/master-volume  {\"volume\":0.5}")
		log.Printf("  GET  /api/stats")
		log.Printf("  GET  /api/stats/ws")
		log.Printf("  GET  /metrics")
		if err := http.ListenAndServe(addr, router); err != nil {
			log.Fatalf("control API failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("ready. press Ctrl+C to stop.")
	<-quit

	log.Println("shutting down...")
}

// registerBuiltinTone synthesizes a short sine-wave WAV in memory and
// registers it under name, so the demo has something to play without
// shipping audio assets.
func registerBuiltinTone(m *mixer.Mixer, sounds *control.SoundRegistry, name string, freqHz, durationSecs float64, sampleRate float32) {
	const toneSampleRate = 44100
	n := int(durationSecs * toneSampleRate)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / toneSampleRate
		envelope := 1.0
		if fade := toneSampleRate / 20; i < fade {
			envelope = float64(i) / float64(fade)
		} else if tail := n - i; tail < fade {
			envelope = float64(tail) / float64(fade)
		}
		samples[i] = int16(math.Sin(2*math.Pi*freqHz*t) * 0.5 * envelope * 32767)
	}

	wavBytes := encodeMonoWAV(toneSampleRate, samples)
	stream, err := decode.NewWAVStream(wavBytes)
	if err != nil {
		log.Printf("registerBuiltinTone(%s): %v", name, err)
		return
	}
	src, err := m.NewSource(stream)
	if err != nil {
		log.Printf("registerBuiltinTone(%s): %v", name, err)
		return
	}
	sounds.Register(name, src)
	log.Printf("registered sound %q (%.2fs @ %.0fHz tone)", name, durationSecs, freqHz)
}

func encodeMonoWAV(sampleRate int, samples []int16) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(s))
	}
	return buf
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
