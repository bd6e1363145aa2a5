/*
Copyright 2023.

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

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	accesskeycontroller "github.com/deuxfleurs-fr/garage-operator/internal/controller/accesskey"
	bucketcontroller "github.com/deuxfleurs-fr/garage-operator/internal/controller/bucket"
	garagecontroller "github.com/deuxfleurs-fr/garage-operator/internal/controller/garage"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
	"github.com/deuxfleurs-fr/garage-operator/internal/observability"
	//+kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

// garageImageRepository is the image that GARAGE_VERSION supplies the tag for.
const garageImageRepository = "dxflrs/garage"

// defaultGarageVersion is the image tag used when GARAGE_VERSION is unset.
const defaultGarageVersion = "v1.0.1"

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	utilruntime.Must(v1alpha1.AddToScheme(scheme))
	//+kubebuilder:scaffold:scheme
}

func main() {
	var httpAddr string
	var probeAddr string
	var enableLeaderElection bool
	var reconcilePeriod time.Duration

	flag.StringVar(&httpAddr, "http-bind-address", ":8080", "The address the /, /health and /metrics endpoints bind to (spec.md §6).")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the manager's own /healthz and /readyz probes bind to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	flag.DurationVar(&reconcilePeriod, "reconcile-period", time.Minute, "Period at which a settled resource is re-reconciled.")

	opts := zap.Options{
		Development: true,
		TimeEncoder: zapcore.ISO8601TimeEncoder,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	// Environment variables from spec §6: OPENTELEMETRY_ENDPOINT_URL, the
	// RUST_LOG-equivalent log-level filter, and GARAGE_VERSION.
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		setupLog.Error(err, "unable to load environment configuration")
		os.Exit(1)
	}

	if level, err := zapcore.ParseLevel(k.String("LOG_LEVEL")); err == nil {
		opts.Level = level
	}

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	otelEndpoint := k.String("OPENTELEMETRY_ENDPOINT_URL")
	shutdownTracing, err := observability.InstallTracing(context.Background(), "garage-operator", otelEndpoint)
	if err != nil {
		setupLog.Error(err, "unable to install tracing")
		os.Exit(1)
	}

	garageVersion := k.String("GARAGE_VERSION")
	if garageVersion == "" {
		garageVersion = defaultGarageVersion
	}
	garageImage := garageImageRepository + ":" + garageVersion

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		// The manager's own metrics server is disabled ("0"): spec.md §6 puts
		// /metrics on the same port as /health and / (httpAddr), served by
		// observability.Server below instead of controller-runtime's default.
		Metrics: server.Options{
			BindAddress: "0",
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "1402b7b1.deuxfleurs.fr",
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	metricsCollectors := observability.NewMetrics()
	snapshot := observability.NewSnapshot(time.Now())
	controllerHelper := helpers.NewControllerHelper()

	if err = (&garagecontroller.GarageReconciler{
		Client:           mgr.GetClient(),
		Scheme:           mgr.GetScheme(),
		ReconcilePeriod:  reconcilePeriod,
		AdminClientFor:   helpers.GetAdminClient,
		ControllerHelper: controllerHelper,
		Recorder:         mgr.GetEventRecorderFor("garage-operator"),
		Metrics:          metricsCollectors,
		Snapshot:         snapshot,
		GarageImage:      garageImage,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "Garage")
		os.Exit(1)
	}
	if err = (&bucketcontroller.BucketReconciler{
		Client:           mgr.GetClient(),
		Scheme:           mgr.GetScheme(),
		ReconcilePeriod:  reconcilePeriod,
		AdminClientFor:   helpers.GetAdminClient,
		ControllerHelper: controllerHelper,
		Recorder:         mgr.GetEventRecorderFor("garage-operator"),
		Metrics:          metricsCollectors,
		Snapshot:         snapshot,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "Bucket")
		os.Exit(1)
	}
	if err = (&accesskeycontroller.AccessKeyReconciler{
		Client:           mgr.GetClient(),
		Scheme:           mgr.GetScheme(),
		ReconcilePeriod:  reconcilePeriod,
		AdminClientFor:   helpers.GetAdminClient,
		ControllerHelper: controllerHelper,
		Recorder:         mgr.GetEventRecorderFor("garage-operator"),
		Metrics:          metricsCollectors,
		Snapshot:         snapshot,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "AccessKey")
		os.Exit(1)
	}
	//+kubebuilder:scaffold:builder

	if err := mgr.Add(observability.NewServer(httpAddr, snapshot)); err != nil {
		setupLog.Error(err, "unable to register http snapshot server")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupLog.Info("starting manager")
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		setupLog.Error(err, "problem shutting down tracer")
	}
}
