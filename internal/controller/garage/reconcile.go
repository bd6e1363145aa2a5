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

package garage_controller

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	k8sapierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
	"github.com/deuxfleurs-fr/garage-operator/internal/observability"
)

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
//
// Garage carries no finalizer: its rendered Deployment, Service, ConfigMap
// and PersistentVolumeClaims are owner-reference-linked and cleaned up by
// Kubernetes garbage collection when the CR is deleted.
func (r *GarageReconciler) Reconcile(ctx context.Context, req ctrl.Request) (result ctrl.Result, reterr error) {
	ctx, span := observability.StartReconcileSpan(ctx, "Garage", req.Namespace, req.Name)
	started := time.Now()
	defer func() {
		span.End()
		if r.Metrics != nil {
			r.Metrics.ObserveReconcile("Garage", req.Namespace, started, reterr)
		}
	}()

	logger := log.FromContext(ctx)

	garage := &v1alpha1.Garage{}
	if err := r.Get(ctx, req.NamespacedName, garage); err != nil {
		if k8sapierrors.IsNotFound(err) {
			logger.Info("Garage resource not found, ignoring", "NamespacedName", req.NamespacedName.String())
			return ctrl.Result{}, nil
		}
		logger.Error(err, "Failed to read Garage resource")
		return ctrl.Result{}, err
	}

	if r.Snapshot != nil {
		defer func() {
			r.Snapshot.Record("Garage", observability.KindStatus{
				Name:               garage.Name,
				Namespace:          garage.Namespace,
				ObservedGeneration: garage.Generation,
				LastReconciledAt:   time.Now(),
				LastError: func() string {
					if reterr != nil {
						return reterr.Error()
					}
					return ""
				}(),
			})
		}()
	}

	adminSecret, rpcSecret, err := r.resolveSecrets(ctx, garage)
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to resolve admin/rpc secrets", err, 0,
		)
	}

	if err := r.reconcileStorage(ctx, garage); err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to render storage claims", err, 0,
		)
	}

	if err := r.apply(ctx, garage, buildConfigMap(garage)); err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to apply Garage config map", err, 0,
		)
	}

	if err := r.apply(ctx, garage, buildService(garage)); err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to apply Garage service", err, 0,
		)
	}

	deployment := buildDeployment(garage, r.GarageImage, adminSecret, rpcSecret)
	if err := r.apply(ctx, garage, deployment); err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to apply Garage deployment", err, 0,
		)
	}

	current := &appsv1.Deployment{}
	if err := r.Get(ctx, types.NamespacedName{Name: deployment.Name, Namespace: garage.Namespace}, current); err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
			"Failed to read Garage deployment status", err, 0,
		)
	}
	if current.Status.ReadyReplicas < 1 {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateCreating, v1alpha1.ConditionReconciled, v1alpha1.Reconciling,
			"Waiting for Garage deployment to become ready", nil, notReadyRequeue,
		)
	}

	adminClient, err := r.AdminClientFor(ctx, r.Client, garage)
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
			"Failed to build Garage admin client", err, 0,
		)
	}

	return r.reconcileLayout(ctx, req, garage, adminClient)
}

// resolveSecrets returns the admin and rpc secret locations. A
// user-referenced secret that cannot be read is an error; a default
// location that doesn't exist yet is not, since creating it is an external
// collaborator's responsibility.
func (r *GarageReconciler) resolveSecrets(ctx context.Context, garage *v1alpha1.Garage) (admin, rpc types.NamespacedName, err error) {
	admin = types.NamespacedName{Name: garage.Name + "-admin.key", Namespace: garage.Namespace}
	if garage.Spec.Secrets.Admin != nil {
		admin = helpers.ResolveNamespacedName(*garage.Spec.Secrets.Admin, garage.Namespace)
		if getErr := r.Get(ctx, admin, &corev1.Secret{}); getErr != nil {
			return admin, rpc, fmt.Errorf("referenced admin secret %s: %w", admin, getErr)
		}
	}

	rpc = types.NamespacedName{Name: garage.Name + "-rpc.key", Namespace: garage.Namespace}
	if garage.Spec.Secrets.Rpc != nil {
		rpc = helpers.ResolveNamespacedName(*garage.Spec.Secrets.Rpc, garage.Namespace)
		if getErr := r.Get(ctx, rpc, &corev1.Secret{}); getErr != nil {
			return admin, rpc, fmt.Errorf("referenced rpc secret %s: %w", rpc, getErr)
		}
	}

	return admin, rpc, nil
}

// reconcileStorage applies the meta and data PersistentVolumeClaims not
// covered by an existingClaim reference.
func (r *GarageReconciler) reconcileStorage(ctx context.Context, garage *v1alpha1.Garage) error {
	if garage.Spec.Storage.Meta.ExistingClaim == "" {
		pvc, err := buildPVC(garage, metaPVCName(garage), garage.Spec.Storage.Meta)
		if err != nil {
			return fmt.Errorf("meta storage claim: %w", err)
		}
		if err := r.apply(ctx, garage, pvc); err != nil {
			return fmt.Errorf("applying meta storage claim: %w", err)
		}
	}

	for i, spec := range garage.Spec.Storage.Data {
		if spec.ExistingClaim != "" {
			continue
		}
		pvc, err := buildPVC(garage, dataPVCName(garage, i), spec)
		if err != nil {
			return fmt.Errorf("data storage claim %d: %w", i, err)
		}
		if err := r.apply(ctx, garage, pvc); err != nil {
			return fmt.Errorf("applying data storage claim %d: %w", i, err)
		}
	}

	return nil
}
