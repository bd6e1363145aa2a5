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

package accesskey_controller

import (
	"time"

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

const accessKeyFinalizer = "accesskeys.deuxfleurs.fr/cleanup"

const dependencyNotReadyRequeue = 30 * time.Second

//+kubebuilder:rbac:groups=deuxfleurs.fr,resources=accesskeys,verbs=get;list;watch;create;update;patch;delete
//+kubebuilder:rbac:groups=deuxfleurs.fr,resources=accesskeys/status,verbs=get;update;patch
//+kubebuilder:rbac:groups=deuxfleurs.fr,resources=accesskeys/finalizers,verbs=update
//+kubebuilder:rbac:groups=deuxfleurs.fr,resources=garages;buckets,verbs=get;list;watch
//+kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch;create;update;patch;delete

// AccessKeyReconciler reconciles an AccessKey object
type AccessKeyReconciler struct {
	client.Client
	Scheme           *runtime.Scheme
	ReconcilePeriod  time.Duration
	AdminClientFor   helpers.AdminClientFactory
	ControllerHelper *helpers.ControllerHelper
	Recorder         record.EventRecorder
	Metrics          *observability.Metrics
	Snapshot         *observability.Snapshot
}

// SetupWithManager sets up the controller with the Manager.
func (r *AccessKeyReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.AccessKey{}).
		Owns(&corev1.Secret{}).
		WithEventFilter(predicate.Funcs{
			UpdateFunc: func(e event.UpdateEvent) bool {
				return e.ObjectOld.GetGeneration() != e.ObjectNew.GetGeneration()
			},
			DeleteFunc: func(e event.DeleteEvent) bool {
				return !e.DeleteStateUnknown
			},
		}).
		WithOptions(controller.Options{MaxConcurrentReconciles: 10}).
		Complete(r)
}
