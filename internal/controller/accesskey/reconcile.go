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
)

// Reconcile is part of the main kubernetes reconciliation loop which aims to
// move the current state of the cluster closer to the desired state.
func (r *AccessKeyReconciler) Reconcile(ctx context.Context, req ctrl.Request) (result ctrl.Result, reterr error) {
	ctx, span := observability.StartReconcileSpan(ctx, "AccessKey", req.Namespace, req.Name)
	started := time.Now()
	defer func() {
		span.End()
		if r.Metrics != nil {
			r.Metrics.ObserveReconcile("AccessKey", req.Namespace, started, reterr)
		}
	}()

	logger := log.FromContext(ctx)

	accessKeyResource := &v1alpha1.AccessKey{}
	if err := r.Get(ctx, req.NamespacedName, accessKeyResource); err != nil {
		if k8sapierrors.IsNotFound(err) {
			logger.Info("AccessKey resource not found, ignoring", "NamespacedName", req.NamespacedName.String())
			return ctrl.Result{}, nil
		}
		logger.Error(err, "Failed to read AccessKey resource")
		return ctrl.Result{}, err
	}

	if r.Snapshot != nil {
		defer func() {
			r.Snapshot.Record("AccessKey", observability.KindStatus{
				Name:               accessKeyResource.Name,
				Namespace:          accessKeyResource.Namespace,
				ObservedGeneration: accessKeyResource.Generation,
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

	if accessKeyResource.GetDeletionTimestamp() != nil {
		return r.handleDeletion(ctx, req, accessKeyResource)
	}

	garage, err := helpers.GetGarage(ctx, r.Client, accessKeyResource.Spec.GarageRef, accessKeyResource.Namespace)
	if err != nil || garage.Status.State != v1alpha1.StateReady {
		return r.waitForDependency(ctx, req, accessKeyResource, "Referenced Garage is not ready", err)
	}

	bucket, err := helpers.GetBucket(ctx, r.Client, accessKeyResource.Spec.BucketRef, accessKeyResource.Namespace)
	if err != nil || bucket.Status.State != v1alpha1.StateReady {
		return r.waitForDependency(ctx, req, accessKeyResource, "Referenced Bucket is not ready", err)
	}

	if !controllerutil.ContainsFinalizer(accessKeyResource, accessKeyFinalizer) {
		controllerutil.AddFinalizer(accessKeyResource, accessKeyFinalizer)
		if err := r.Update(ctx, accessKeyResource); err != nil {
			logger.Error(err, "Failed to add finalizer to AccessKey resource")
			return ctrl.Result{}, err
		}
	}

	adminClient, err := r.AdminClientFor(ctx, r.Client, garage)
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, accessKeyResource,
			&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
			"Failed to build Garage admin client", err, 0,
		)
	}

	if accessKeyResource.Status.Id == "" {
		if result, err := r.createKeyAndSecret(ctx, req, accessKeyResource, adminClient); err != nil {
			return result, err
		}
	}

	return r.reconcilePermissions(ctx, req, accessKeyResource, bucket, adminClient)
}

func (r *AccessKeyReconciler) waitForDependency(
	ctx context.Context,
	req reconcile.Request,
	accessKeyResource *v1alpha1.AccessKey,
	message string,
	err error,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, err)
	}
	logger.Info(message, "NamespacedName", req.NamespacedName.String())
	return r.ControllerHelper.SetReconciledCondition(
		ctx, r.Status(), r.Recorder, req, accessKeyResource,
		&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
		v1alpha1.StateCreating, v1alpha1.ConditionReconciled, v1alpha1.DependencyNotReady,
		message, nil, dependencyNotReadyRequeue,
	)
}

// createKeyAndSecret provisions a new remote key and materializes its
// one-time secret. If the Secret write fails after the remote key was
// created, the remote key is rolled back and status.id is left unset so a
// retry starts clean.
func (r *AccessKeyReconciler) createKeyAndSecret(
	ctx context.Context,
	req reconcile.Request,
	accessKeyResource *v1alpha1.AccessKey,
	adminClient *garageadmin.Client,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)

	name := fmt.Sprintf("%s.%s", accessKeyResource.Namespace, accessKeyResource.Name)
	created, err := adminClient.CreateKey(ctx, name)
	if err != nil {
		logger.Error(err, "Failed to create access key")
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, accessKeyResource,
			&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			fmt.Sprintf("Failed to create access key %s", name), err, 0,
		)
	}

	if err := r.materializeSecret(ctx, accessKeyResource, created.AccessKeyID, created.SecretAccessKey); err != nil {
		logger.Error(err, "Failed to materialize access key secret, rolling back remote key")
		if rollbackErr := adminClient.DeleteKey(ctx, created.AccessKeyID); rollbackErr != nil && !garageadmin.IsNotFound(rollbackErr) {
			logger.Error(rollbackErr, "Failed to roll back remote key after secret write failure")
		}
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, accessKeyResource,
			&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to write access key secret; remote key rolled back", err, 0,
		)
	}

	accessKeyResource.Status.Id = created.AccessKeyID
	return reconcile.Result{}, nil
}

func (r *AccessKeyReconciler) reconcilePermissions(
	ctx context.Context,
	req reconcile.Request,
	accessKeyResource *v1alpha1.AccessKey,
	bucket *v1alpha1.Bucket,
	adminClient *garageadmin.Client,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)

	remoteBucket, err := adminClient.GetBucket(ctx, bucket.Status.Id, "")
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, accessKeyResource,
			&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
			"Failed to fetch bucket descriptor for permissions reconcile", err, 0,
		)
	}

	current := garageadmin.BucketKeyPerms{}
	for _, key := range remoteBucket.Keys {
		if key.AccessKeyID == accessKeyResource.Status.Id {
			current = key.Permissions
			break
		}
	}

	desired := garageadmin.BucketKeyPerms{
		Read:  accessKeyResource.Spec.Permissions.Read,
		Write: accessKeyResource.Spec.Permissions.Write,
		Owner: accessKeyResource.Spec.Permissions.Owner,
	}

	toAllow := garageadmin.BucketKeyPerms{
		Read:  desired.Read && !current.Read,
		Write: desired.Write && !current.Write,
		Owner: desired.Owner && !current.Owner,
	}
	toDeny := garageadmin.BucketKeyPerms{
		Read:  !desired.Read && current.Read,
		Write: !desired.Write && current.Write,
		Owner: !desired.Owner && current.Owner,
	}

	if toAllow.Read || toAllow.Write || toAllow.Owner {
		if err := adminClient.AllowKey(ctx, bucket.Status.Id, accessKeyResource.Status.Id, toAllow); err != nil {
			logger.Error(err, "Failed to grant permissions")
			return r.ControllerHelper.SetReconciledCondition(
				ctx, r.Status(), r.Recorder, req, accessKeyResource,
				&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
				v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
				"Failed to grant bucket permissions", err, 0,
			)
		}
	}
	if toDeny.Read || toDeny.Write || toDeny.Owner {
		if err := adminClient.DenyKey(ctx, bucket.Status.Id, accessKeyResource.Status.Id, toDeny); err != nil {
			logger.Error(err, "Failed to revoke permissions")
			return r.ControllerHelper.SetReconciledCondition(
				ctx, r.Status(), r.Recorder, req, accessKeyResource,
				&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
				v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
				"Failed to revoke bucket permissions", err, 0,
			)
		}
	}

	accessKeyResource.Status.PermissionsFriendly = helpers.PermissionsFriendly(accessKeyResource.Spec.Permissions)

	return r.ControllerHelper.SetReconciledCondition(
		ctx, r.Status(), r.Recorder, req, accessKeyResource,
		&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
		v1alpha1.StateReady, v1alpha1.ConditionReconciled, v1alpha1.Reconciled,
		"Access key reconciled", nil, r.ReconcilePeriod,
	)
}
