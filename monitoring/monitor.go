// Package monitoring turns a running scenario into a small web server so
// that the run can be observed and controlled from outside the process.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"bytes"
	"runtime/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/arena/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Monitor can turn a run into a server and allows external monitoring and
// controlling of the run.
type Monitor struct {
	scheduler  *sim.Scheduler
	apps       []sim.App
	portNumber int
	openWindow bool

	stream *streamHub
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		stream: newStreamHub(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowserWindow makes the monitor open the served URL in the default
// browser once the server is up.
func (m *Monitor) WithBrowserWindow() *Monitor {
	m.openWindow = true

	return m
}

// RegisterScheduler registers the scheduler that drives the run. The monitor
// attaches a hook to the scheduler so that finished events can be streamed
// to connected clients.
func (m *Monitor) RegisterScheduler(s *sim.Scheduler) {
	m.scheduler = s
	s.AcceptHook(&streamHook{hub: m.stream})

	apps := s.RunContext().Apps
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m.RegisterApp(apps[name])
	}
}

// RegisterApp registers an app whose state can be inspected through the
// monitoring API.
func (m *Monitor) RegisterApp(a sim.App) {
	m.apps = append(m.apps, a)
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseRun)
	r.HandleFunc("/api/continue", m.continueRun)
	r.HandleFunc("/api/stop", m.stopRun)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/progress", m.progress)
	r.HandleFunc("/api/slots", m.listSlots)
	r.HandleFunc("/api/log", m.listLog)
	r.HandleFunc("/api/list_apps", m.listApps)
	r.HandleFunc("/api/app/{name}", m.listAppDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/stream", m.stream.serve)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(os.Stderr,
		"Monitoring run with http://localhost:%d\n", port)

	go m.stream.run()

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()

	if m.openWindow {
		err = browser.OpenURL(fmt.Sprintf("http://localhost:%d", port))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser window: %s\n", err)
		}
	}
}

func (m *Monitor) pauseRun(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueRun(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) stopRun(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Stop()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.scheduler.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

type statusRsp struct {
	Status   string  `json:"status"`
	Mode     string  `json:"mode"`
	Now      float64 `json:"now"`
	Duration float64 `json:"duration"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	rsp := statusRsp{
		Status:   m.scheduler.Status().String(),
		Mode:     m.scheduler.Mode().String(),
		Now:      float64(m.scheduler.CurrentTime()),
		Duration: float64(m.scheduler.Duration()),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) progress(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.scheduler.StateCounts())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listSlots(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.scheduler.ReadySlots())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listLog(w http.ResponseWriter, _ *http.Request) {
	entries := m.scheduler.RunContext().Log.Entries()

	bytes, err := json.Marshal(entries)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listApps(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, a := range m.apps {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", a.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listAppDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	app := m.findAppOr404(w, name)
	if app == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(app)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findAppOr404(w http.ResponseWriter, name string) sim.App {
	for _, a := range m.apps {
		if a.Name() == name {
			return a
		}
	}

	w.WriteHeader(404)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
