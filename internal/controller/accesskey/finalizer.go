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

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
)

func (r *AccessKeyReconciler) handleDeletion(
	ctx context.Context,
	req reconcile.Request,
	accessKeyResource *v1alpha1.AccessKey,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(accessKeyResource, accessKeyFinalizer) {
		return ctrl.Result{}, nil
	}

	if err := r.finalizeAccessKey(ctx, accessKeyResource); err != nil {
		logger.Error(err, "Failed to revoke/delete remote access key, will retry", "NamespacedName", req.NamespacedName.String())
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, accessKeyResource,
			&accessKeyResource.Status.Conditions, &accessKeyResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.DeletionFailure,
			fmt.Sprintf("Failed to delete access key %s/%s remotely", accessKeyResource.Namespace, accessKeyResource.Name),
			err, 0,
		)
	}

	controllerutil.RemoveFinalizer(accessKeyResource, accessKeyFinalizer)
	if err := r.Update(ctx, accessKeyResource); err != nil {
		logger.Error(err, "Failed to remove finalizer from AccessKey resource")
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

// finalizeAccessKey revokes the key's permission on its bucket then deletes
// the remote key. A Garage that can no longer be fetched is treated as
// having nothing left to clean up remotely; a Bucket that can no longer be
// fetched only skips the revoke, and the remote key is still deleted.
func (r *AccessKeyReconciler) finalizeAccessKey(ctx context.Context, accessKeyResource *v1alpha1.AccessKey) error {
	if accessKeyResource.Status.Id == "" {
		return nil
	}

	garage, err := helpers.GetGarage(ctx, r.Client, accessKeyResource.Spec.GarageRef, accessKeyResource.Namespace)
	if err != nil {
		return nil
	}

	adminClient, err := r.AdminClientFor(ctx, r.Client, garage)
	if err != nil {
		return err
	}

	if bucket, err := helpers.GetBucket(ctx, r.Client, accessKeyResource.Spec.BucketRef, accessKeyResource.Namespace); err == nil && bucket.Status.Id != "" {
		revokeAll := garageadmin.BucketKeyPerms{Read: true, Write: true, Owner: true}
		if err := adminClient.DenyKey(ctx, bucket.Status.Id, accessKeyResource.Status.Id, revokeAll); err != nil && !garageadmin.IsNotFound(err) {
			return err
		}
	}

	if err := adminClient.DeleteKey(ctx, accessKeyResource.Status.Id); err != nil && !garageadmin.IsNotFound(err) {
		return err
	}
	return nil
}
