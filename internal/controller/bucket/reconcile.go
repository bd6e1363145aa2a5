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

package bucket_controller

import (
	"context"
	"fmt"
	"time"

	k8sapierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
	"github.com/deuxfleurs-fr/garage-operator/internal/observability"
	"github.com/deuxfleurs-fr/garage-operator/internal/quantity"
)

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
//
// For more details, check Reconcile and its Result here:
// - https://pkg.go.dev/sigs.k8s.io/controller-runtime@v0.16.3/pkg/reconcile
func (r *BucketReconciler) Reconcile(ctx context.Context, req ctrl.Request) (result ctrl.Result, reterr error) {
	ctx, span := observability.StartReconcileSpan(ctx, "Bucket", req.Namespace, req.Name)
	started := time.Now()
	defer func() {
		span.End()
		if r.Metrics != nil {
			r.Metrics.ObserveReconcile("Bucket", req.Namespace, started, reterr)
		}
	}()

	logger := log.FromContext(ctx)

	bucketResource := &v1alpha1.Bucket{}
	if err := r.Get(ctx, req.NamespacedName, bucketResource); err != nil {
		if k8sapierrors.IsNotFound(err) {
			logger.Info("Bucket resource not found, ignoring", "NamespacedName", req.NamespacedName.String())
			return ctrl.Result{}, nil
		}
		logger.Error(err, "Failed to read Bucket resource")
		return ctrl.Result{}, err
	}

	if r.Snapshot != nil {
		defer func() {
			r.Snapshot.Record("Bucket", observability.KindStatus{
				Name:               bucketResource.Name,
				Namespace:          bucketResource.Namespace,
				ObservedGeneration: bucketResource.Generation,
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

	if bucketResource.GetDeletionTimestamp() != nil {
		return r.handleDeletion(ctx, req, bucketResource)
	}

	garage, err := helpers.GetGarage(ctx, r.Client, bucketResource.Spec.GarageRef, bucketResource.Namespace)
	if err != nil || garage.Status.State != v1alpha1.StateReady {
		message := "Referenced Garage is not ready"
		if err != nil {
			message = fmt.Sprintf("%s: %s", message, err)
		}
		logger.Info(message, "NamespacedName", req.NamespacedName.String())
		return r.ControllerHelper.SetReconciledCondition(
			ctx,
			r.Status(),
			r.Recorder,
			req,
			bucketResource,
			&bucketResource.Status.Conditions,
			&bucketResource.Status.State,
			v1alpha1.StateCreating,
			v1alpha1.ConditionReconciled,
			v1alpha1.DependencyNotReady,
			message,
			nil,
			dependencyNotReadyRequeue,
		)
	}

	if !controllerutil.ContainsFinalizer(bucketResource, bucketFinalizer) {
		controllerutil.AddFinalizer(bucketResource, bucketFinalizer)
		if err := r.Update(ctx, bucketResource); err != nil {
			logger.Error(err, "Failed to add finalizer to Bucket resource")
			return ctrl.Result{}, err
		}
	}

	adminClient, err := r.AdminClientFor(ctx, r.Client, garage)
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx,
			r.Status(),
			r.Recorder,
			req,
			bucketResource,
			&bucketResource.Status.Conditions,
			&bucketResource.Status.State,
			v1alpha1.StateErrored,
			v1alpha1.ConditionReconciled,
			v1alpha1.Unreachable,
			"Failed to build Garage admin client",
			err,
			0,
		)
	}

	return r.reconcileRemote(ctx, req, bucketResource, adminClient)
}

func (r *BucketReconciler) reconcileRemote(
	ctx context.Context,
	req reconcile.Request,
	bucketResource *v1alpha1.Bucket,
	adminClient *garageadmin.Client,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)

	globalAlias := fmt.Sprintf("%s.%s", bucketResource.Namespace, bucketResource.Name)

	if bucketResource.Status.Id == "" {
		id, err := adminClient.CreateBucket(ctx, globalAlias)
		if err != nil {
			if garageadmin.IsAlreadyExists(err) || garageadmin.IsConflict(err) {
				existing, getErr := adminClient.GetBucket(ctx, "", globalAlias)
				if getErr != nil {
					return r.ControllerHelper.SetReconciledCondition(
						ctx, r.Status(), r.Recorder, req, bucketResource,
						&bucketResource.Status.Conditions, &bucketResource.Status.State,
						v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
						fmt.Sprintf("Bucket alias %s already exists remotely but could not be adopted", globalAlias),
						getErr, 0,
					)
				}
				id = existing.ID
			} else {
				logger.Error(err, "Failed to create bucket", "globalAlias", globalAlias)
				return r.ControllerHelper.SetReconciledCondition(
					ctx, r.Status(), r.Recorder, req, bucketResource,
					&bucketResource.Status.Conditions, &bucketResource.Status.State,
					v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
					fmt.Sprintf("Failed to create bucket %s", globalAlias),
					err, 0,
				)
			}
		}
		bucketResource.Status.Id = id
	}

	desiredQuotas, err := toRemoteQuotas(bucketResource.Spec.Quotas)
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, bucketResource,
			&bucketResource.Status.Conditions, &bucketResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Spec quotas are invalid",
			err, 0,
		)
	}

	remote, err := adminClient.GetBucket(ctx, bucketResource.Status.Id, "")
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, bucketResource,
			&bucketResource.Status.Conditions, &bucketResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
			"Failed to fetch bucket descriptor",
			err, 0,
		)
	}

	if !quotasEqual(remote.Quotas, desiredQuotas) {
		if err := adminClient.UpdateBucketQuotas(ctx, bucketResource.Status.Id, desiredQuotas); err != nil {
			logger.Error(err, "Failed to update bucket quotas")
			return r.ControllerHelper.SetReconciledCondition(
				ctx, r.Status(), r.Recorder, req, bucketResource,
				&bucketResource.Status.Conditions, &bucketResource.Status.State,
				v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
				fmt.Sprintf("Failed to update quotas for bucket %s", globalAlias),
				err, 0,
			)
		}
	}

	return r.ControllerHelper.SetReconciledCondition(
		ctx, r.Status(), r.Recorder, req, bucketResource,
		&bucketResource.Status.Conditions, &bucketResource.Status.State,
		v1alpha1.StateReady, v1alpha1.ConditionReconciled, v1alpha1.Reconciled,
		"Bucket reconciled",
		nil, r.ReconcilePeriod,
	)
}

func toRemoteQuotas(spec v1alpha1.BucketQuotas) (garageadmin.BucketQuotas, error) {
	remote := garageadmin.BucketQuotas{MaxObjectCount: spec.MaxObjectCount}
	if spec.MaxSize != "" {
		bytes, err := quantity.ParseBytes(spec.MaxSize)
		if err != nil {
			return garageadmin.BucketQuotas{}, err
		}
		size := uint64(bytes)
		remote.MaxSize = &size
	}
	return remote, nil
}

func quotasEqual(a, b garageadmin.BucketQuotas) bool {
	return uint64PtrEqual(a.MaxSize, b.MaxSize) && uint64PtrEqual(a.MaxObjectCount, b.MaxObjectCount)
}

func uint64PtrEqual(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
