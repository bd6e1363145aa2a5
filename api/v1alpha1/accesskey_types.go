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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// AccessKeyPermissions is the desired (read, write, owner) triple granted
// to the key on its referenced bucket.
type AccessKeyPermissions struct {
	// +kubebuilder:validation:Optional
	Read bool `json:"read,omitempty"`

	// +kubebuilder:validation:Optional
	Write bool `json:"write,omitempty"`

	// +kubebuilder:validation:Optional
	Owner bool `json:"owner,omitempty"`
}

// AccessKeySpec defines the desired state of AccessKey
type AccessKeySpec struct {
	// GarageRef names the Garage CR the key is provisioned in.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:XValidation:rule="self == oldSelf",message="garageRef is immutable"
	GarageRef NamespacedRef `json:"garageRef"`

	// BucketRef names the Bucket CR the key is granted permissions on.
	// +kubebuilder:validation:Required
	// +kubebuilder:validation:XValidation:rule="self == oldSelf",message="bucketRef is immutable"
	BucketRef NamespacedRef `json:"bucketRef"`

	// +kubebuilder:validation:Required
	Permissions AccessKeyPermissions `json:"permissions"`

	// SecretRef names the Kubernetes Secret the credentials are written
	// to. Defaults to "<name>.<bucket>.<garage>.key" in the CR's
	// namespace when unset.
	// +kubebuilder:validation:Optional
	SecretRef *NamespacedRef `json:"secretRef,omitempty"`
}

// AccessKeyStatus defines the observed state of AccessKey
type AccessKeyStatus struct {
	// Id is the remote Garage access key ID. Immutable once set.
	// +kubebuilder:validation:Optional
	Id string `json:"id,omitempty"`

	// PermissionsFriendly is a derived "RWO"-style projection of
	// spec.permissions, recomputed on every reconcile.
	// +kubebuilder:validation:Optional
	PermissionsFriendly string `json:"permissionsFriendly,omitempty"`

	// State is the discrete lifecycle phase: Creating, Configuring, Ready
	// or Errored.
	// +kubebuilder:validation:Optional
	State State `json:"state,omitempty"`

	// Status management using Conditions.
	// See also : https://github.com/kubernetes/community/blob/master/contributors/devel/sig-architecture/api-conventions.md#typical-status-properties
	Conditions []metav1.Condition `json:"conditions,omitempty" patchStrategy:"merge" patchMergeKey:"type"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Bucket",type=string,JSONPath=`.spec.bucketRef`
// +kubebuilder:printcolumn:name="Permissions",type=string,JSONPath=`.status.permissionsFriendly`
// +kubebuilder:printcolumn:name="State",type=string,JSONPath=`.status.state`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// AccessKey is the Schema for the accesskeys API
type AccessKey struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AccessKeySpec   `json:"spec,omitempty"`
	Status AccessKeyStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AccessKeyList contains a list of AccessKey
type AccessKeyList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AccessKey `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AccessKey{}, &AccessKeyList{})
}
