// snorenet.go SnoreNET model specific code
package snorenet

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"
	"github.com/tphakala/snore-go/internal/conf"
	"github.com/tphakala/snore-go/internal/cpuspec"
	"github.com/tphakala/snore-go/internal/errors"
	"github.com/tphakala/snore-go/internal/logging"
)

// SnoreNET represents the snore detection model with its TensorFlow Lite
// interpreter and configuration. The interpreter is not safe for concurrent
// invocation; Predict serializes access with a mutex.
type SnoreNET struct {
	Interpreter *tflite.Interpreter
	Settings    *conf.Settings

	model *tflite.Model
	mu    sync.Mutex
	log   *slog.Logger
}

// New initializes a new SnoreNET instance with the given settings. The model
// is loaded from SnoreNET.ModelPath; there is no embedded fallback.
func New(settings *conf.Settings) (*SnoreNET, error) {
	sn := &SnoreNET{
		Settings: settings,
		log:      logging.Structured().With("service", "snorenet"),
	}

	if err := sn.initializeModel(); err != nil {
		return nil, errors.New(fmt.Errorf("SnoreNET: failed to initialize analysis model: %w", err)).
			Component("snorenet").
			Category(errors.CategoryModelInit).
			ModelContext(settings.SnoreNET.ModelPath).
			Build()
	}

	return sn, nil
}

// initializeModel loads and initializes the snore detection model.
func (sn *SnoreNET) initializeModel() error {
	start := time.Now()

	modelData, err := os.ReadFile(sn.Settings.SnoreNET.ModelPath)
	if err != nil {
		return errors.New(err).
			Component("snorenet").
			Category(errors.CategoryModelLoad).
			ModelContext(sn.Settings.SnoreNET.ModelPath).
			Timing("model-load", time.Since(start)).
			Build()
	}

	sn.model = tflite.NewModel(modelData)
	if sn.model == nil {
		return errors.Newf("cannot load TensorFlow Lite model from %s", sn.Settings.SnoreNET.ModelPath).
			Component("snorenet").
			Category(errors.CategoryModelInit).
			Context("model_size_kb", len(modelData)/1024).
			Build()
	}

	// Determine the number of threads for the interpreter based on settings
	// and system capacity.
	threads := sn.determineThreadCount(sn.Settings.SnoreNET.Threads)

	options := tflite.NewInterpreterOptions()

	// Try to use XNNPACK delegate if enabled in settings
	if sn.Settings.SnoreNET.UseXNNPACK {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threads-1))})
		if delegate == nil {
			sn.log.Warn("Failed to create XNNPACK delegate, falling back to default CPU inference")
			options.SetNumThread(threads)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threads)
	}

	options.SetErrorReporter(func(msg string, userData any) {
		logging.Structured().Error("TFLite error", "message", msg)
	}, nil)

	sn.Interpreter = tflite.NewInterpreter(sn.model, options)
	if sn.Interpreter == nil {
		return errors.Newf("cannot create TensorFlow Lite interpreter").
			Component("snorenet").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := sn.Interpreter.AllocateTensors(); status != tflite.OK {
		return errors.Newf("tensor allocation failed").
			Component("snorenet").
			Category(errors.CategoryModelInit).
			Build()
	}

	spec := cpuspec.GetCPUSpec()
	if sn.Settings.SnoreNET.Threads == 0 && spec.PerformanceCores > 0 {
		sn.log.Info("SnoreNET model initialized",
			"model_path", sn.Settings.SnoreNET.ModelPath,
			"threads", threads,
			"performance_cores", spec.PerformanceCores,
			"total_cpus", runtime.NumCPU(),
			"duration_ms", time.Since(start).Milliseconds())
	} else {
		sn.log.Info("SnoreNET model initialized",
			"model_path", sn.Settings.SnoreNET.ModelPath,
			"threads", threads,
			"total_cpus", runtime.NumCPU(),
			"duration_ms", time.Since(start).Milliseconds())
	}
	return nil
}

// determineThreadCount calculates the appropriate thread count, 0 selects
// the optimal count for the CPU.
func (sn *SnoreNET) determineThreadCount(configuredThreads int) int {
	systemCpuCount := runtime.NumCPU()

	if configuredThreads <= 0 {
		spec := cpuspec.GetCPUSpec()
		optimal := spec.GetOptimalThreadCount()
		if optimal > 0 && optimal <= systemCpuCount {
			return optimal
		}
		return systemCpuCount
	}

	if configuredThreads > systemCpuCount {
		return systemCpuCount
	}
	return configuredThreads
}

// Reset clears any internal classifier state. The current model is
// stateless per invocation, so a reset only verifies the interpreter is
// usable; it is called once by the orchestrator at startup so a future
// stateful model has a defined warm-up point.
func (sn *SnoreNET) Reset() error {
	sn.mu.Lock()
	defer sn.mu.Unlock()

	if sn.Interpreter == nil {
		return errors.Newf("SnoreNET: interpreter not initialized").
			Component("snorenet").
			Category(errors.CategoryModelInit).
			Build()
	}
	return nil
}

// Delete releases the interpreter and model resources.
func (sn *SnoreNET) Delete() {
	sn.mu.Lock()
	defer sn.mu.Unlock()

	if sn.Interpreter != nil {
		sn.Interpreter.Delete()
		sn.Interpreter = nil
	}
	if sn.model != nil {
		sn.model.Delete()
		sn.model = nil
	}
}
