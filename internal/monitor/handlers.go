package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"ecogrid/internal/render"
	"ecogrid/internal/sims/trophic"
)

type generationRsp struct {
	Generation  uint32 `json:"generation"`
	Paused      bool   `json:"paused"`
	Units       int    `json:"units"`
	UnitsIssued uint32 `json:"units_issued"`
	Layout      string `json:"layout"`
	Seed        int64  `json:"seed"`
}

type statsRsp struct {
	Generation uint32              `json:"generation"`
	Totals     trophic.Population  `json:"totals"`
	Cells      []trophic.CellStats `json:"cells"`
}

type cellRsp struct {
	trophic.CellStats
	Cell trophic.Cell `json:"cell"`
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		m.log.Debugf("write response: %v", err)
	}
}

func (m *Monitor) fail(w http.ResponseWriter, err error) {
	m.log.Errorf("monitor request failed: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (m *Monitor) index(w http.ResponseWriter, _ *http.Request) {
	snap := m.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s\n\n%s\n", render.Map(&snap.Cells), render.Summary(snap))
}

func (m *Monitor) generation(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	rsp := generationRsp{
		Generation:  m.world.Generation(),
		Paused:      m.paused,
		Units:       m.world.Grid().UnitCount(),
		UnitsIssued: m.world.UnitsIssued(),
		Layout:      m.world.Config().Layout,
		Seed:        m.world.Seed(),
	}
	m.mu.Unlock()
	m.writeJSON(w, rsp)
}

func (m *Monitor) cells(w http.ResponseWriter, _ *http.Request) {
	data, err := render.EncodeSnapshotJSON(m.Snapshot())
	if err != nil {
		m.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (m *Monitor) cell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, rowErr := strconv.Atoi(vars["row"])
	col, colErr := strconv.Atoi(vars["col"])
	if rowErr != nil || colErr != nil || row >= trophic.Size || col >= trophic.Size {
		http.Error(w, fmt.Sprintf("cell (%s,%s) is outside the grid", vars["row"], vars["col"]), http.StatusNotFound)
		return
	}

	m.mu.Lock()
	c := m.world.Grid().Cell(row, col)
	m.mu.Unlock()

	m.writeJSON(w, cellRsp{CellStats: trophic.StatsOf(row, col, c), Cell: c})
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	g := m.world.Grid()
	rsp := statsRsp{Generation: g.Generation(), Totals: g.Totals(), Cells: g.Stats()}
	m.mu.Unlock()
	m.writeJSON(w, rsp)
}

func (m *Monitor) params(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	snap := m.world.Parameters()
	m.mu.Unlock()
	m.writeJSON(w, snap)
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.SetPaused(true)
	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) resume(w http.ResponseWriter, _ *http.Request) {
	m.Continue()
	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) step(w http.ResponseWriter, r *http.Request) {
	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	for i := 0; i < n; i++ {
		if err := m.Step(r.Context()); err != nil {
			m.log.Warnf("publishing generation failed: %v", err)
		}
	}
	m.generation(w, r)
}

func (m *Monitor) reset(w http.ResponseWriter, r *http.Request) {
	var seed int64
	if v := r.URL.Query().Get("seed"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
		seed = parsed
	}
	if err := m.Reset(r.Context(), seed); err != nil {
		m.log.Warnf("publishing reset failed: %v", err)
	}
	m.generation(w, r)
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.fail(w, err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: memory.RSS})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)
	if err := pprof.StartCPUProfile(buf); err != nil {
		m.fail(w, err)
		return
	}
	time.Sleep(m.profileDuration)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, err)
		return
	}
	m.writeJSON(w, prof)
}

// inspect dumps the world's fields one level deep.
func (m *Monitor) inspect(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.world)
	serializer.SetMaxDepth(1)

	var buf bytes.Buffer
	if err := serializer.Serialize(&buf); err != nil {
		m.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}
