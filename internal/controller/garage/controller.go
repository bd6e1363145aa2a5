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

// Package garage_controller reconciles the Garage custom resource: it
// renders and applies the Deployment, Service, ConfigMap and
// PersistentVolumeClaims a Garage instance runs on, waits for the
// Deployment to become ready, and then drives the one-shot cluster layout.
package garage_controller

import (
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
	"github.com/deuxfleurs-fr/garage-operator/internal/observability"
)

// fieldManager is the field manager used for every server-side apply patch
// issued by this reconciler.
const fieldManager = "garage-operator"

// notReadyRequeue is how soon to look again while the Deployment has not
// reached readyReplicas >= 1, or while layout has just been submitted.
const notReadyRequeue = 7 * time.Second

//+kubebuilder:rbac:groups=deuxfleurs.fr,resources=garages,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=deuxfleurs.fr,resources=garages/status,verbs=get;update;patch
//+kubebuilder:rbac:groups="",resources=persistentvolumeclaims;services;configmaps;secrets,verbs=get;list;watch;create;update;patch
//+kubebuilder:rbac:groups=apps,resources=deployments,verbs=get;list;watch;create;update;patch

// GarageReconciler reconciles a Garage object
type GarageReconciler struct {
	client.Client
	Scheme           *runtime.Scheme
	ReconcilePeriod  time.Duration
	AdminClientFor   helpers.AdminClientFactory
	ControllerHelper *helpers.ControllerHelper
	Recorder         record.EventRecorder
	Metrics          *observability.Metrics
	Snapshot         *observability.Snapshot

	// GarageImage is the pinned container image:tag run by every rendered
	// Deployment (spec.md §4.2 step 5, §6 GARAGE_VERSION).
	GarageImage string
}

// SetupWithManager sets up the controller with the Manager.
func (r *GarageReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.Garage{}).
		Owns(&appsv1.Deployment{}).
		Owns(&corev1.Service{}).
		Owns(&corev1.ConfigMap{}).
		Owns(&corev1.PersistentVolumeClaim{}).
		WithEventFilter(predicate.Funcs{
			UpdateFunc: func(e event.UpdateEvent) bool {
				return e.ObjectOld.GetGeneration() != e.ObjectNew.GetGeneration()
			},
			DeleteFunc: func(e event.DeleteEvent) bool {
				return !e.DeleteStateUnknown
			},
		}).
		WithOptions(controller.Options{MaxConcurrentReconciles: 5}).
		Complete(r)
}
